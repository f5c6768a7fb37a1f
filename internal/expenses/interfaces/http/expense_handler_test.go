package http

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"aeroledger/internal/expenses/domain"
)

type memoryRepo struct {
	expenses map[string]*domain.Expense
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{expenses: map[string]*domain.Expense{}}
}

func (m *memoryRepo) List(_ context.Context) ([]domain.Expense, error) {
	var out []domain.Expense
	for _, expense := range m.expenses {
		out = append(out, *expense)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (*domain.Expense, error) {
	if expense, ok := m.expenses[id]; ok {
		copied := *expense
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, expense *domain.Expense) error {
	m.expenses[expense.ID] = expense
	return nil
}

func (m *memoryRepo) Update(_ context.Context, expense *domain.Expense) error {
	if _, ok := m.expenses[expense.ID]; !ok {
		return domain.ErrNotFound
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.expenses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

func newTestHandler(t *testing.T, repo *memoryRepo) *ExpenseHandler {
	t.Helper()
	h, err := NewExpenseHandler(repo, nil, log.New(os.Stderr, "", 0))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return h
}

func doJSON(t *testing.T, h *ExpenseHandler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestExpenseCreateAndGet(t *testing.T) {
	repo := newMemoryRepo()
	h := newTestHandler(t, repo)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/expenses",
		`{"type":"Fuel","amount":1200.5,"currency":"USD","place":"OMDB"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(repo.expenses) != 1 {
		t.Fatalf("stored %d expenses, want 1", len(repo.expenses))
	}
	var id string
	for key := range repo.expenses {
		id = key
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/expenses/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"Fuel"`) {
		t.Fatalf("get body = %s", rec.Body.String())
	}
}

func TestExpenseCreate_RejectsBadCurrency(t *testing.T) {
	h := newTestHandler(t, newMemoryRepo())

	rec := doJSON(t, h, http.MethodPost, "/api/v1/expenses",
		`{"type":"Fuel","amount":100,"currency":"GBP"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExpenseCreate_PeriodInvariants(t *testing.T) {
	h := newTestHandler(t, newMemoryRepo())

	cases := []struct {
		name string
		body string
		want int
	}{
		{
			name: "valid window",
			body: `{"type":"Insurance","amount":1200,"currency":"USD","period_start":"2025-01-01","period_end":"2025-04-01"}`,
			want: http.StatusCreated,
		},
		{
			name: "start only",
			body: `{"type":"Insurance","amount":1200,"currency":"USD","period_start":"2025-01-01"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "mid-month bound",
			body: `{"type":"Insurance","amount":1200,"currency":"USD","period_start":"2025-01-15","period_end":"2025-04-01"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "end not after start",
			body: `{"type":"Insurance","amount":1200,"currency":"USD","period_start":"2025-04-01","period_end":"2025-04-01"}`,
			want: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/v1/expenses", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestExpenseUpdate_NotFound(t *testing.T) {
	h := newTestHandler(t, newMemoryRepo())

	rec := doJSON(t, h, http.MethodPut, "/api/v1/expenses/missing",
		`{"type":"Fuel","amount":1,"currency":"USD"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestExpenseDelete(t *testing.T) {
	repo := newMemoryRepo()
	repo.expenses["exp-1"] = &domain.Expense{ID: "exp-1", Type: "Fuel", Amount: 10, Currency: "USD"}
	h := newTestHandler(t, repo)

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/expenses/exp-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(repo.expenses) != 0 {
		t.Fatalf("expense not deleted")
	}
}
