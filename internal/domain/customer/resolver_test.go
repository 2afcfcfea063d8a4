package customer

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/ident"
)

// --- Mock implementations ---

type mockRepo struct {
	rows      []Customer
	findErr   error
	insertErr error
	inserted  []Customer
}

func (m *mockRepo) FindByName(_ context.Context, name string) ([]Customer, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []Customer
	for _, c := range m.rows {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Customer, error) {
	for _, c := range m.rows {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Insert(_ context.Context, c Customer) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, c)
	m.rows = append(m.rows, c)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]Customer, error) {
	return m.rows, nil
}

type mockSource struct {
	repo   *mockRepo
	locked int
}

func (m *mockSource) Lock(_ context.Context, _ ident.Table) error {
	m.locked++
	return nil
}

func (m *mockSource) MaxKey(_ context.Context, _ ident.Table) (int64, bool, error) {
	var top int64
	for _, c := range m.repo.rows {
		top = max(top, c.ID)
	}
	return top, len(m.repo.rows) > 0, nil
}

func newFixture(rows ...Customer) (*mockRepo, *mockSource) {
	repo := &mockRepo{rows: rows}
	return repo, &mockSource{repo: repo}
}

func minimalDefaults(t *testing.T) Defaults {
	t.Helper()
	d, err := DefaultsFor(VariantMinimal)
	require.NoError(t, err)
	return d
}

// --- Tests ---

func TestResolve_BlankName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		repo, ids := newFixture()
		r := NewResolver(minimalDefaults(t), PolicyFirst)

		_, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: name})

		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "name", verr.Field)
		assert.Empty(t, repo.inserted)
		assert.Zero(t, ids.locked, "blank names must not touch storage")
	}
}

func TestResolve_Existing(t *testing.T) {
	repo, ids := newFixture(Customer{ID: 1, Name: "이민석", Address: "서울", Phone: "010"})
	r := NewResolver(minimalDefaults(t), PolicyFirst)

	res, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "  이민석 "})
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, int64(1), res.Customer.ID)
	assert.Empty(t, repo.inserted)
	assert.Equal(t, 1, ids.locked)
}

func TestResolve_DecomposedHangulMatches(t *testing.T) {
	repo, ids := newFixture(Customer{ID: 3, Name: "이민석"})
	r := NewResolver(minimalDefaults(t), PolicyFirst)

	decomposed := "\u110b\u1175\u1106\u1175\u11ab\u1109\u1165\u11a8"
	res, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: decomposed})
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, int64(3), res.Customer.ID)
}

func TestResolve_CreatesWithDefaults(t *testing.T) {
	tests := []struct {
		name        string
		variant     string
		req         ResolveRequest
		wantAddress string
		wantPhone   string
	}{
		{
			name:        "minimal variant",
			variant:     VariantMinimal,
			req:         ResolveRequest{Name: "Minseok Lee"},
			wantAddress: "Seoul",
			wantPhone:   PlaceholderPhone,
		},
		{
			name:        "extended variant",
			variant:     VariantExtended,
			req:         ResolveRequest{Name: "Minseok Lee"},
			wantAddress: "입력없음",
			wantPhone:   PlaceholderPhone,
		},
		{
			name:        "supplied attributes win",
			variant:     VariantExtended,
			req:         ResolveRequest{Name: "Minseok Lee", Address: "Busan", Phone: "010-1111-2222"},
			wantAddress: "Busan",
			wantPhone:   "010-1111-2222",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DefaultsFor(tt.variant)
			require.NoError(t, err)

			repo, ids := newFixture(Customer{ID: 4, Name: "Someone"})
			r := NewResolver(d, PolicyFirst)

			res, err := r.Resolve(context.Background(), repo, ids, tt.req)
			require.NoError(t, err)

			assert.True(t, res.Created)
			assert.Equal(t, int64(5), res.Customer.ID)
			require.Len(t, repo.inserted, 1)
			assert.Equal(t, Customer{
				ID:      5,
				Name:    "Minseok Lee",
				Address: tt.wantAddress,
				Phone:   tt.wantPhone,
			}, repo.inserted[0])
		})
	}
}

func TestResolve_FirstEmptyTable(t *testing.T) {
	repo, ids := newFixture()
	r := NewResolver(minimalDefaults(t), PolicyFirst)

	res, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Customer.ID)
}

func TestResolve_Ambiguous(t *testing.T) {
	rows := []Customer{
		{ID: 2, Name: "김연아"},
		{ID: 7, Name: "김연아"},
	}

	t.Run("first policy picks lowest id", func(t *testing.T) {
		repo, ids := newFixture(rows...)
		r := NewResolver(minimalDefaults(t), PolicyFirst)

		res, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "김연아"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Customer.ID)
	})

	t.Run("reject policy lists matches", func(t *testing.T) {
		repo, ids := newFixture(rows...)
		r := NewResolver(minimalDefaults(t), PolicyReject)

		_, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "김연아"})

		var amb *apperr.AmbiguousMatchError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, []int64{2, 7}, amb.CustomerIDs)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("hint disambiguates", func(t *testing.T) {
		repo, ids := newFixture(rows...)
		r := NewResolver(minimalDefaults(t), PolicyReject)

		res, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "김연아", CustomerID: 7})
		require.NoError(t, err)
		assert.Equal(t, int64(7), res.Customer.ID)
	})

	t.Run("hint for another name is rejected", func(t *testing.T) {
		repo, ids := newFixture(rows...)
		r := NewResolver(minimalDefaults(t), PolicyReject)

		_, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "김연아", CustomerID: 3})

		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "customerId", verr.Field)
	})
}

func TestResolve_HintForUnknownName(t *testing.T) {
	repo, ids := newFixture(Customer{ID: 1, Name: "박지성"})
	r := NewResolver(minimalDefaults(t), PolicyFirst)

	_, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "Nobody", CustomerID: 1})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, repo.inserted)
}

func TestResolve_StorageErrors(t *testing.T) {
	t.Run("find", func(t *testing.T) {
		repo, ids := newFixture()
		repo.findErr = errors.New("db down")
		r := NewResolver(minimalDefaults(t), PolicyFirst)

		_, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "find customers by name")
	})

	t.Run("insert", func(t *testing.T) {
		repo, ids := newFixture()
		repo.insertErr = &apperr.IntegrityError{Op: "insert customer", Err: errors.New("duplicate key")}
		r := NewResolver(minimalDefaults(t), PolicyFirst)

		_, err := r.Resolve(context.Background(), repo, ids, ResolveRequest{Name: "x"})
		require.ErrorIs(t, err, apperr.ErrIntegrity)
	})
}

func TestDefaultsFor_Unknown(t *testing.T) {
	_, err := DefaultsFor("lavish")
	require.Error(t, err)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFirst, p)

	p, err = ParsePolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	_, err = ParsePolicy("random")
	require.Error(t, err)
}
