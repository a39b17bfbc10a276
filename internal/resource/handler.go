package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/fallback"
)

const (
	// HeaderDataSource tells the client where a record came from.
	HeaderDataSource = "X-Data-Source"

	// SourceBackend marks answers of the remote backend.
	SourceBackend = "backend"
	// SourceFallback marks answers of the in-memory fallback store.
	SourceFallback = "fallback"
)

// ListResponse is the envelope of list and search answers.
type ListResponse[T any] struct {
	Data     []T    `json:"data"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Source   string `json:"source"`
}

type options struct {
	client func() *backend.Client
	now    func() time.Time
}

// Option configures a Handler.
type Option func(*options)

// WithClient replaces backend.Engine as source of the backend client.
func WithClient(client func() *backend.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Handler proxies one resource to the backend and serves it from the fallback store when allowed.
type Handler[T any] struct {
	def   Definition[T]
	store *fallback.Store[T]
	opts  options
}

// New creates the handler of def. It panics when T does not embed Record.
func New[T any](def Definition[T], opts ...Option) *Handler[T] {
	baseOf(new(T))

	h := &Handler[T]{
		def: def,
		opts: options{
			client: backend.Engine.Client,
			now:    time.Now,
		},
	}

	for _, opt := range opts {
		opt(&h.opts)
	}

	if def.Fallback {
		h.store = fallback.New[T]()
	}

	return h
}

// Name of the resource.
func (h *Handler[T]) Name() string {
	return h.def.Name
}

// Register adds the routes of the resource below router, e.g. /api/tags.
func (h *Handler[T]) Register(router fiber.Router, authService *auth.Service) {
	read := auth.RequirePermission(authService, h.def.readPermission())
	write := auth.RequirePermission(authService, h.def.writePermission())

	g := router.Group("/" + h.def.Name)

	g.Get("", read, h.list)
	g.Get("/search", read, h.search)
	g.Get("/:id", read, h.get)

	if h.def.Preview != nil {
		g.Get("/:id/preview", read, h.preview)
	}

	g.Post("", write, h.create)
	g.Put("/:id", write, h.update)
	g.Patch("/:id", write, h.update)
	g.Delete("/:id", write, h.delete)
}

// Find loads one record from the backend, or from the fallback store when the backend is unreachable.
func (h *Handler[T]) Find(ctx context.Context, id uint64) (T, string, error) {
	var v T

	raw, err := h.remote().Get(ctx, id)

	switch {
	case err == nil:
		if raw == nil {
			return v, SourceBackend, fmt.Errorf("%w: empty record", backend.ErrInvalidResponse)
		}

		if err = json.Unmarshal(raw, &v); err != nil {
			return v, SourceBackend, fmt.Errorf("%w: %w", backend.ErrInvalidResponse, err)
		}

		return v, SourceBackend, nil
	case h.useFallback(err):
		backend.CountFallback(h.def.Name, "get")

		v, err = h.store.Get(id)

		return v, SourceFallback, err
	default:
		return v, SourceBackend, err
	}
}

func (h *Handler[T]) list(c *fiber.Ctx) error {
	return h.query(c, "list", strings.TrimSpace(c.Query("search")))
}

func (h *Handler[T]) search(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return Fail(c, h.def.Name, "search", ErrEmptySearch)
	}

	return h.query(c, "search", term)
}

func (h *Handler[T]) query(c *fiber.Ctx, operation, term string) error {
	page, err := ParsePage(c.Query("page"), c.Query("pageSize"))
	if err != nil {
		return Fail(c, h.def.Name, operation, err)
	}

	userID, err := parseUserFilter(c.Query("userId"))
	if err != nil {
		return Fail(c, h.def.Name, operation, err)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("pageSize", strconv.Itoa(page.PageSize))

	if userID != 0 {
		q.Set("userId", strconv.FormatUint(userID, 10))
	}

	var res *backend.ListResult

	if operation == "search" {
		res, err = h.remote().Search(OperatorContext(c), term, q)
	} else {
		if term != "" {
			q.Set("search", term)
		}

		res, err = h.remote().List(OperatorContext(c), q)
	}

	if err == nil {
		return h.sendBackendList(c, operation, res, page)
	}

	if !h.useFallback(err) {
		return Fail(c, h.def.Name, operation, err)
	}

	backend.CountFallback(h.def.Name, operation)

	items := h.store.List(func(v T) bool {
		if userID != 0 && baseOf(&v).UserID != userID {
			return false
		}

		return term == "" || h.match(&v, term)
	})

	c.Set(HeaderDataSource, SourceFallback)

	return c.JSON(ListResponse[T]{
		Data:     Slice(items, page),
		Total:    len(items),
		Page:     page.Page,
		PageSize: page.PageSize,
		Source:   SourceFallback,
	})
}

func (h *Handler[T]) sendBackendList(c *fiber.Ctx, operation string, res *backend.ListResult, page Page) error {
	items := make([]T, 0, len(res.Items))

	for _, raw := range res.Items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return Fail(c, h.def.Name, operation, fmt.Errorf("%w: %w", backend.ErrInvalidResponse, err))
		}

		items = append(items, v)
	}

	total := res.Total

	// without a total the answer is the whole collection
	if !res.Paged {
		total = len(items)
		items = Slice(items, page)
	}

	c.Set(HeaderDataSource, SourceBackend)

	return c.JSON(ListResponse[T]{
		Data:     items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Source:   SourceBackend,
	})
}

func (h *Handler[T]) get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return Fail(c, h.def.Name, "get", err)
	}

	v, source, err := h.Find(OperatorContext(c), id)
	if err != nil {
		return Fail(c, h.def.Name, "get", err)
	}

	c.Set(HeaderDataSource, source)

	return c.JSON(v)
}

func (h *Handler[T]) preview(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return Fail(c, h.def.Name, "preview", err)
	}

	v, source, err := h.Find(OperatorContext(c), id)
	if err != nil {
		return Fail(c, h.def.Name, "preview", err)
	}

	html, err := h.def.Preview(&v)
	if err != nil {
		return Fail(c, h.def.Name, "preview", err)
	}

	c.Set(HeaderDataSource, source)

	return c.JSON(fiber.Map{"id": id, "html": html})
}

func (h *Handler[T]) create(c *fiber.Ctx) error {
	var v T
	if err := decodeBody(c.Body(), &v); err != nil {
		return Fail(c, h.def.Name, "create", err)
	}

	b := baseOf(&v)
	b.ID = 0

	if b.UserID == 0 {
		b.UserID = auth.UserID(c)
	}

	now := h.opts.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	if err := h.check(&v); err != nil {
		return Fail(c, h.def.Name, "create", err)
	}

	saved, source, err := h.createRecord(OperatorContext(c), v)
	if err != nil {
		return Fail(c, h.def.Name, "create", err)
	}

	c.Set(HeaderDataSource, source)

	return c.Status(fiber.StatusCreated).JSON(saved)
}

// createRecord creates v on the backend or in the fallback store.
func (h *Handler[T]) createRecord(ctx context.Context, v T) (T, string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return v, SourceBackend, fmt.Errorf("failed to encode record: %w", err)
	}

	raw, err := h.remote().Create(ctx, body)

	switch {
	case err == nil:
		out, err := overlay(v, raw)

		return out, SourceBackend, err
	case h.useFallback(err):
		backend.CountFallback(h.def.Name, "create")

		out := h.store.Create(func(id uint64) T {
			rec := v
			baseOf(&rec).ID = id

			return rec
		})

		return out, SourceFallback, nil
	default:
		return v, SourceBackend, err
	}
}

func (h *Handler[T]) update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return Fail(c, h.def.Name, "update", err)
	}

	body := c.Body()
	if !isObject(body) {
		return Fail(c, h.def.Name, "update", ErrMalformedBody)
	}

	ctx := OperatorContext(c)

	cur, _, err := h.Find(ctx, id)
	if err != nil {
		return Fail(c, h.def.Name, "update", err)
	}

	next, err := merge(cur, body)
	if err != nil {
		return Fail(c, h.def.Name, "update", err)
	}

	cb, nb := baseOf(&cur), baseOf(&next)
	nb.ID = id
	nb.CreatedAt = cb.CreatedAt
	nb.UpdatedAt = h.opts.now().UTC()

	if nb.UserID == 0 {
		nb.UserID = cb.UserID
	}

	if err = h.check(&next); err != nil {
		return Fail(c, h.def.Name, "update", err)
	}

	saved, source, err := h.replace(ctx, id, next)
	if err != nil {
		return Fail(c, h.def.Name, "update", err)
	}

	c.Set(HeaderDataSource, source)

	return c.JSON(saved)
}

// replace sends the full record to the backend or swaps it in the fallback store.
func (h *Handler[T]) replace(ctx context.Context, id uint64, v T) (T, string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return v, SourceBackend, fmt.Errorf("failed to encode record: %w", err)
	}

	raw, err := h.remote().Update(ctx, id, body)

	switch {
	case err == nil:
		out, err := overlay(v, raw)

		return out, SourceBackend, err
	case h.useFallback(err):
		backend.CountFallback(h.def.Name, "update")

		out, err := h.store.Update(id, func(p *T) error {
			*p = v

			return nil
		})

		return out, SourceFallback, err
	default:
		return v, SourceBackend, err
	}
}

func (h *Handler[T]) delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return Fail(c, h.def.Name, "delete", err)
	}

	source := SourceBackend

	err = h.remote().Delete(OperatorContext(c), id)
	if err != nil && h.useFallback(err) {
		backend.CountFallback(h.def.Name, "delete")

		source = SourceFallback
		err = h.store.Delete(id)
	}

	if err != nil {
		return Fail(c, h.def.Name, "delete", err)
	}

	c.Set(HeaderDataSource, source)

	return c.JSON(fiber.Map{"message": h.def.label() + " deleted", "id": id})
}

func (h *Handler[T]) check(v *T) error {
	if h.def.Prepare != nil {
		h.def.Prepare(v)
	}

	return Validate(v)
}

func (h *Handler[T]) match(v *T, term string) bool {
	if h.def.Match == nil {
		return true
	}

	return h.def.Match(v, term)
}

func (h *Handler[T]) useFallback(err error) bool {
	return h.store != nil && backend.IsUnreachable(err)
}

func (h *Handler[T]) remote() *backend.ResourceService {
	return h.opts.client().Resource(h.def.Name)
}

// OperatorContext is the context of backend calls made for c, it names the signed in operator.
func OperatorContext(c *fiber.Ctx) context.Context {
	return backend.WithOperator(c.UserContext(), auth.UserID(c))
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

func parseUserFilter(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}

	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: userId", ErrInvalidID)
	}

	return id, nil
}

func isObject(body []byte) bool {
	body = bytes.TrimSpace(body)

	return len(body) > 0 && body[0] == '{'
}

func decodeBody[T any](body []byte, v *T) error {
	if !isObject(body) {
		return ErrMalformedBody
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	return nil
}

// merge applies patch to cur. Fields named in patch are replaced as a whole, the others keep their value.
func merge[T any](cur T, patch []byte) (T, error) {
	out, err := replaceFields(cur, patch)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	return out, nil
}

// overlay applies the backend answer to what was sent. An empty answer keeps v.
func overlay[T any](v T, raw json.RawMessage) (T, error) {
	if raw == nil {
		return v, nil
	}

	out, err := replaceFields(v, raw)
	if err != nil {
		return v, fmt.Errorf("%w: %w", backend.ErrInvalidResponse, err)
	}

	return out, nil
}

// replaceFields swaps the top level members of v's JSON object for those of obj and decodes the result
// into a fresh T. Maps and slices named in obj do not inherit entries from v.
func replaceFields[T any](v T, obj []byte) (T, error) {
	var out T

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(obj, &patch); err != nil {
		return out, err //nolint:wrapcheck
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("failed to encode record: %w", err)
	}

	var fields map[string]json.RawMessage
	if err = json.Unmarshal(raw, &fields); err != nil {
		return out, fmt.Errorf("failed to copy record: %w", err)
	}

	for key, val := range patch {
		// decoding matches keys case insensitively, drop every spelling of the old member
		for old := range fields {
			if strings.EqualFold(old, key) {
				delete(fields, old)
			}
		}

		fields[key] = val
	}

	if raw, err = json.Marshal(fields); err != nil {
		return out, fmt.Errorf("failed to encode record: %w", err)
	}

	if err = json.Unmarshal(raw, &out); err != nil {
		return out, err //nolint:wrapcheck
	}

	return out, nil
}
