package logger

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

const (
	submitLogOperation = "v2.LogsApi.SubmitLog"

	defaultDataDogSource     = "go"
	defaultDataDogBufferSize = 1024
	defaultDataDogTimeout    = 5 * time.Second
)

// DataDogWriter ships every log line to the DataDog logs intake.
// Lines are queued and sent by a single goroutine, a full queue drops the line.
type DataDogWriter struct {
	api      *datadogV2.LogsApi
	ctx      context.Context //nolint:containedctx // carries the datadog api key and site
	cfg      DataDog
	hostname string
	tags     string

	queue chan []byte
	done  chan struct{}
	once  sync.Once
}

// NewDataDogWriter creates the writer and starts its sender.
func NewDataDogWriter(cfg DataDog, serviceName string) *DataDogWriter {
	configuration := datadog.NewConfiguration()

	if len(cfg.Servers) > 0 {
		configuration.Servers = cfg.Servers
		configuration.OperationServers[submitLogOperation] = cfg.Servers
	}

	ctx := context.WithValue(context.Background(), datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: cfg.APIKey},
	})

	if cfg.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{"site": cfg.Site})
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}

	if cfg.Source == "" {
		cfg.Source = defaultDataDogSource
	}

	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultDataDogBufferSize
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultDataDogTimeout
	}

	hostname, _ := os.Hostname() //nolint:errcheck // empty hostname is fine

	w := &DataDogWriter{
		api:      datadogV2.NewLogsApi(datadog.NewAPIClient(configuration)),
		ctx:      ctx,
		cfg:      cfg,
		hostname: hostname,
		tags:     strings.Join(cfg.Tags, ","),
		queue:    make(chan []byte, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	go w.run()

	return w
}

// Write implements io.Writer. zerolog reuses p, so it is copied before queueing.
func (w *DataDogWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)

	select {
	case w.queue <- line:
	default:
	}

	return len(p), nil
}

// Close stops accepting lines and waits until the queue is drained.
func (w *DataDogWriter) Close() error {
	w.once.Do(func() {
		close(w.queue)
	})

	<-w.done

	return nil
}

func (w *DataDogWriter) run() {
	defer close(w.done)

	for line := range w.queue {
		w.submit(line)
	}
}

func (w *DataDogWriter) submit(line []byte) {
	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.Timeout)
	defer cancel()

	item := datadogV2.HTTPLogItem{
		Ddsource: datadog.PtrString(w.cfg.Source),
		Hostname: datadog.PtrString(w.hostname),
		Message:  strings.TrimRight(string(line), "\n"),
		Service:  datadog.PtrString(w.cfg.ServiceName),
	}

	if w.tags != "" {
		item.Ddtags = datadog.PtrString(w.tags)
	}

	// the global logger writes here, so failures go to stderr only
	if _, resp, err := w.api.SubmitLog(ctx, []datadogV2.HTTPLogItem{item}); err != nil {
		ErrorHandler(err)
	} else if resp != nil {
		_ = resp.Body.Close()
	}
}
