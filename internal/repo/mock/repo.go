package mock

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/errs"
	"github.com/flocktrack/flocktrack/internal/repo"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

const sharedScope = "public"

type tenantOwned interface {
	SetOwner(tenantID uuid.UUID)
}

// InMemoryRepository is an in-memory repo.Repo used by unit tests.
//
// It reproduces the scoping rules of the SQL repository: shared models live
// in one bucket, tenant-owned models live in per-tenant buckets selected by
// the tenant id in the context, and a missing tenant id is an error. Call
// counters allow tests to assert how often the store was touched.
type InMemoryRepository struct {
	mu     sync.Mutex
	tables map[string]map[string]repo.Resource

	FirstCalls  int
	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tables: map[string]map[string]repo.Resource{},
	}
}

func (r *InMemoryRepository) scope(ctx context.Context, resource repo.Resource) (string, error) {
	if resource == nil {
		return "", ErrResourceIsNil
	}

	if resource.IsSharedModel() {
		return sharedScope + "/" + resource.TableName(), nil
	}

	tenantID, err := tenantctx.ExtractTenantID(ctx)
	if err != nil {
		return "", errs.Wrap(repo.ErrTenantContextMissing, err)
	}

	if _, err := uuid.Parse(tenantID); err != nil {
		return "", errs.Wrap(repo.ErrInvalidTenantID, err)
	}

	return tenantID + "/" + resource.TableName(), nil
}

func (r *InMemoryRepository) bucket(key string) map[string]repo.Resource {
	if r.tables[key] == nil {
		r.tables[key] = map[string]repo.Resource{}
	}

	return r.tables[key]
}

func (r *InMemoryRepository) Create(ctx context.Context, resource repo.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CreateCalls++

	key, err := r.scope(ctx, resource)
	if err != nil {
		return err
	}

	if owned, ok := resource.(tenantOwned); ok {
		tenantID, _ := tenantctx.ExtractTenantID(ctx)
		owned.SetOwner(uuid.MustParse(tenantID))
	}

	bucket := r.bucket(key)

	id := idOf(resource)
	if _, exists := bucket[id]; exists {
		return repo.ErrUniqueConstraint
	}

	if violatesSubjectUniqueness(bucket, resource, id) {
		return repo.ErrUniqueConstraint
	}

	bucket[id] = clone(resource)

	return nil
}

func (r *InMemoryRepository) First(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.FirstCalls++

	key, err := r.scope(ctx, resource)
	if err != nil {
		return false, err
	}

	for _, stored := range r.bucket(key) {
		if matchesAll(stored, query.Conds) {
			reflect.ValueOf(resource).Elem().Set(reflect.ValueOf(stored).Elem())
			return true, nil
		}
	}

	return false, repo.ErrNotFound
}

func (r *InMemoryRepository) List(
	ctx context.Context,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ListCalls++

	key, err := r.scope(ctx, resource)
	if err != nil {
		return 0, err
	}

	matched := make([]repo.Resource, 0)

	for _, stored := range r.bucket(key) {
		if matchesAll(stored, query.Conds) {
			matched = append(matched, clone(stored))
		}
	}

	sortByOrder(matched, query.OrderFields)

	total := len(matched)

	limit := query.Limit
	if limit <= 0 {
		limit = repo.DefaultLimit
	}

	if query.Offset >= len(matched) {
		matched = nil
	} else {
		matched = matched[query.Offset:]
	}

	if len(matched) > limit {
		matched = matched[:limit]
	}

	err = assignList(result, matched)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *InMemoryRepository) Patch(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.UpdateCalls++

	key, err := r.scope(ctx, resource)
	if err != nil {
		return false, err
	}

	patched := false

	for id, stored := range r.bucket(key) {
		if matchesAll(stored, query.Conds) {
			mergeNonZero(stored, resource)
			r.tables[key][id] = stored
			patched = true
		}
	}

	return patched, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, resource repo.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.UpdateCalls++

	key, err := r.scope(ctx, resource)
	if err != nil {
		return err
	}

	bucket := r.bucket(key)

	id := idOf(resource)
	if violatesSubjectUniqueness(bucket, resource, id) {
		return repo.ErrUniqueConstraint
	}

	bucket[id] = clone(resource)

	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, resource repo.Resource, query repo.Query) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.DeleteCalls++

	key, err := r.scope(ctx, resource)
	if err != nil {
		return false, err
	}

	deleted := false

	for id, stored := range r.bucket(key) {
		if matchesAll(stored, query.Conds) {
			delete(r.tables[key], id)

			deleted = true
		}
	}

	return deleted, nil
}

func (r *InMemoryRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	return txFunc(ctx, r)
}

// sortByOrder applies the query's ordering. Unordered queries fall back to
// id order so pagination over the map-backed buckets is deterministic.
func sortByOrder(resources []repo.Resource, orderFields []repo.OrderField) {
	if len(orderFields) == 0 {
		orderFields = []repo.OrderField{{Field: repo.IDField, Direction: repo.Asc}}
	}

	sort.SliceStable(resources, func(i, j int) bool {
		vi := reflect.ValueOf(resources[i]).Elem()
		vj := reflect.ValueOf(resources[j]).Elem()

		for _, order := range orderFields {
			fi, iok := fieldByColumn(vi, order.Field)
			fj, jok := fieldByColumn(vj, order.Field)

			if !iok || !jok {
				continue
			}

			a := fmt.Sprint(fi.Interface())
			b := fmt.Sprint(fj.Interface())

			if a == b {
				continue
			}

			if order.Direction == repo.Desc {
				return a > b
			}

			return a < b
		}

		return false
	})
}

func clone(resource repo.Resource) repo.Resource {
	v := reflect.ValueOf(resource).Elem()
	c := reflect.New(v.Type())
	c.Elem().Set(v)

	out, _ := c.Interface().(repo.Resource)

	return out
}

func idOf(resource repo.Resource) string {
	value, ok := fieldByColumn(reflect.ValueOf(resource).Elem(), repo.IDField)
	if !ok {
		return ""
	}

	return fmt.Sprint(value.Interface())
}

func violatesSubjectUniqueness(bucket map[string]repo.Resource, resource repo.Resource, selfID string) bool {
	subject, ok := fieldByColumn(reflect.ValueOf(resource).Elem(), repo.ExternalSubjectIDField)
	if !ok || subject.String() == "" {
		return false
	}

	for id, stored := range bucket {
		if id == selfID {
			continue
		}

		existing, ok := fieldByColumn(reflect.ValueOf(stored).Elem(), repo.ExternalSubjectIDField)
		if ok && existing.String() == subject.String() {
			return true
		}
	}

	return false
}

func matchesAll(resource repo.Resource, conds []repo.Condition) bool {
	v := reflect.ValueOf(resource).Elem()

	for _, cond := range conds {
		field, ok := fieldByColumn(v, cond.Field)
		if !ok {
			return false
		}

		if !matches(field.Interface(), cond) {
			return false
		}
	}

	return true
}

func matches(value any, cond repo.Condition) bool {
	if stored, ok := value.(time.Time); ok {
		if wanted, ok := cond.Value.(time.Time); ok {
			switch cond.Op {
			case repo.Equal:
				return stored.Equal(wanted)
			case repo.GreaterThan:
				return stored.After(wanted)
			case repo.LessThan:
				return stored.Before(wanted)
			case repo.GreaterEq:
				return !stored.Before(wanted)
			case repo.LessEq:
				return !stored.After(wanted)
			}
		}
	}

	if cond.Op == repo.Equal {
		return fmt.Sprint(value) == fmt.Sprint(cond.Value)
	}

	return false
}

// fieldByColumn resolves the snake_case column name used in queries to the
// struct field holding it, descending into embedded structs.
func fieldByColumn(v reflect.Value, column string) (reflect.Value, bool) {
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if inner, ok := fieldByColumn(v.Field(i), column); ok {
				return inner, true
			}

			continue
		}

		if toSnakeCase(field.Name) == column {
			return v.Field(i), true
		}
	}

	return reflect.Value{}, false
}

func toSnakeCase(name string) string {
	// Treats consecutive capitals as one word, so "CoopID" becomes "coop_id".
	var b strings.Builder

	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (runes[i-1] < 'A' || runes[i-1] > 'Z') {
				b.WriteByte('_')
			}

			r += 'a' - 'A'
		}

		b.WriteRune(r)
	}

	return b.String()
}

func mergeNonZero(dst, src repo.Resource) {
	dstV := reflect.ValueOf(dst).Elem()
	srcV := reflect.ValueOf(src).Elem()

	for i := range srcV.NumField() {
		field := srcV.Field(i)
		if field.IsZero() || !dstV.Field(i).CanSet() {
			continue
		}

		dstV.Field(i).Set(field)
	}
}

func assignList(result any, matched []repo.Resource) error {
	out := reflect.ValueOf(result)
	if out.Kind() != reflect.Pointer || out.Elem().Kind() != reflect.Slice {
		return ErrResultNotAPointer
	}

	slice := reflect.MakeSlice(out.Elem().Type(), 0, len(matched))
	for _, m := range matched {
		slice = reflect.Append(slice, reflect.ValueOf(m))
	}

	out.Elem().Set(slice)

	return nil
}
