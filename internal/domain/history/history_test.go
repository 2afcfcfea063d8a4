package history

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byName map[string][]Entry
	err    error
	calls  atomic.Int32
}

func (m *mockRepo) ByCustomerName(_ context.Context, name string) ([]Entry, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.byName[name], nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newRepo() *mockRepo {
	return &mockRepo{byName: map[string][]Entry{
		"Minseok Lee": {
			{OrderID: 12, BookID: 3, CustomerID: 6, BookName: "Understanding Football", SalePrice: decimal.NewFromInt(22000), OrderDate: day(2024, 5, 2), Phone: "010-1234-5678"},
			{OrderID: 11, BookID: 1, CustomerID: 6, BookName: "History of Football", SalePrice: decimal.NewFromInt(7000), OrderDate: day(2024, 5, 1), Phone: "010-1234-5678"},
		},
	}}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIDs   []int64
		wantCalls int32
	}{
		{name: "known customer", input: "Minseok Lee", wantIDs: []int64{12, 11}, wantCalls: 1},
		{name: "surrounding whitespace", input: "  Minseok Lee\t", wantIDs: []int64{12, 11}, wantCalls: 1},
		{name: "unknown customer", input: "Nobody", wantIDs: []int64{}, wantCalls: 1},
		{name: "blank name", input: "   ", wantIDs: []int64{}, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo()
			r := NewReporter(repo, 0)

			got, err := r.Report(context.Background(), tt.input)
			require.NoError(t, err)
			require.NotNil(t, got)

			ids := make([]int64, len(got))
			for i, e := range got {
				ids[i] = e.OrderID
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantCalls, repo.calls.Load())
		})
	}
}

func TestReport_Error(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection reset")}

	_, err := NewReporter(repo, 1).Report(context.Background(), "Minseok Lee")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestReportMany(t *testing.T) {
	repo := newRepo()
	r := NewReporter(repo, 2)

	got, err := r.ReportMany(context.Background(), []string{"Minseok Lee", "Nobody", ""})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Len(t, got["Minseok Lee"], 2)
	assert.Empty(t, got["Nobody"])
	assert.NotNil(t, got["Nobody"])
	assert.Empty(t, got[""])
}

func TestReportMany_Error(t *testing.T) {
	repo := &mockRepo{err: errors.New("db down")}

	got, err := NewReporter(repo, 2).ReportMany(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Nil(t, got)
}
