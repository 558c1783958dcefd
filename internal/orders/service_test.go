package orders

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optomall/optomall/internal/platform/httpx"
)

type mockRepo struct {
	order     *Order
	insertErr error

	payments   []Payment
	paid       []string
	qrByOrder  map[string]string
	bulkCalls  []string
	bulkResult int64
}

func (m *mockRepo) GetOrder(_ context.Context, id string) (*Order, error) {
	if m.order == nil || m.order.ID != id {
		return nil, fmt.Errorf("%w: order %s", httpx.ErrNotFound, id)
	}
	return m.order, nil
}

func (m *mockRepo) RecordPayment(_ context.Context, p Payment, settle bool) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.payments = append(m.payments, p)
	if settle {
		m.paid = append(m.paid, p.OrderID)
	}
	return nil
}

func (m *mockRepo) SetOrderQR(_ context.Context, orderID, url string) error {
	if m.qrByOrder == nil {
		m.qrByOrder = map[string]string{}
	}
	m.qrByOrder[orderID] = url
	return nil
}

func (m *mockRepo) BulkUpdateStatus(_ context.Context, entity string, ids []string, status string) (int64, error) {
	m.bulkCalls = append(m.bulkCalls, "update:"+entity+":"+status)
	return m.bulkResult, nil
}

func (m *mockRepo) BulkDelete(_ context.Context, entity string, ids []string) (int64, error) {
	m.bulkCalls = append(m.bulkCalls, "delete:"+entity)
	return m.bulkResult, nil
}

type mockTasks struct {
	enqueued []string
}

func (m *mockTasks) EnqueueGenerateQR(_ context.Context, orderID string) error {
	m.enqueued = append(m.enqueued, orderID)
	return nil
}

func webhookRequest(status string) WebhookRequest {
	return WebhookRequest{
		Provider:          "payme",
		ProviderPaymentID: "pp-1",
		OrderID:           "ord-1",
		Amount:            decimal.NewFromInt(42),
		Currency:          "USD",
		Status:            status,
	}
}

func TestHandlePaymentSettlingStatuses(t *testing.T) {
	for _, status := range []string{"succeeded", "paid", "completed"} {
		repo := &mockRepo{}
		tasks := &mockTasks{}
		svc := NewService(repo, nil, tasks, slog.Default())

		err := svc.HandlePayment(context.Background(), webhookRequest(status))
		require.NoError(t, err, "status %s", status)

		require.Len(t, repo.payments, 1)
		assert.Equal(t, []string{"ord-1"}, repo.paid, "status %s", status)
		assert.Equal(t, []string{"ord-1"}, tasks.enqueued, "status %s", status)
	}
}

func TestHandlePaymentNonTerminalStatusOnlyRecords(t *testing.T) {
	repo := &mockRepo{}
	tasks := &mockTasks{}
	svc := NewService(repo, nil, tasks, slog.Default())

	err := svc.HandlePayment(context.Background(), webhookRequest("pending"))
	require.NoError(t, err)

	require.Len(t, repo.payments, 1)
	assert.Empty(t, repo.paid)
	assert.Empty(t, tasks.enqueued)
}

func TestHandlePaymentDuplicateIsIdempotent(t *testing.T) {
	repo := &mockRepo{insertErr: fmt.Errorf("%w: payment pp-1", httpx.ErrDuplicate)}
	tasks := &mockTasks{}
	svc := NewService(repo, nil, tasks, slog.Default())

	err := svc.HandlePayment(context.Background(), webhookRequest("succeeded"))
	require.NoError(t, err)

	assert.Empty(t, repo.paid)
	assert.Empty(t, tasks.enqueued)
}

func TestBulkActionDispatch(t *testing.T) {
	repo := &mockRepo{bulkResult: 3}
	svc := NewService(repo, nil, nil, slog.Default())

	req := BulkActionRequest{Entity: "products", Action: "update_status", IDs: []string{"1", "2", "3"}}
	req.Payload.Status = "archived"
	n, err := svc.BulkAction(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = svc.BulkAction(context.Background(), BulkActionRequest{
		Entity: "shipments", Action: "delete", IDs: []string{"9"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.Equal(t, []string{"update:products:archived", "delete:shipments"}, repo.bulkCalls)
}

func TestBulkActionUpdateStatusNeedsPayload(t *testing.T) {
	svc := NewService(&mockRepo{}, nil, nil, slog.Default())

	_, err := svc.BulkAction(context.Background(), BulkActionRequest{
		Entity: "products", Action: "update_status", IDs: []string{"1"},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGenerateQRStoresFile(t *testing.T) {
	chart := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer chart.Close()

	dir := t.TempDir()
	qr := NewQRGenerator(dir, slog.Default())
	qr.chartURL = chart.URL

	repo := &mockRepo{order: &Order{ID: "ord-1", Status: StatusPaid, CreatedAt: time.Now()}}
	svc := NewService(repo, qr, nil, slog.Default())

	url, err := svc.GenerateQR(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "/media/qr/ord-1.png", url)
	assert.Equal(t, url, repo.qrByOrder["ord-1"])

	stored, err := os.ReadFile(filepath.Join(dir, "qr", "ord-1.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))
}

func TestGenerateQRFallsBackToChartURL(t *testing.T) {
	chart := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer chart.Close()

	qr := NewQRGenerator(t.TempDir(), slog.Default())
	qr.chartURL = chart.URL

	repo := &mockRepo{order: &Order{ID: "ord-2"}}
	svc := NewService(repo, qr, nil, slog.Default())

	url, err := svc.GenerateQR(context.Background(), "ord-2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, chart.URL), "got %s", url)
	assert.Contains(t, url, "cht=qr")
	assert.Equal(t, url, repo.qrByOrder["ord-2"])
}

func TestGenerateQRUnknownOrder(t *testing.T) {
	svc := NewService(&mockRepo{}, nil, nil, slog.Default())

	_, err := svc.GenerateQR(context.Background(), "missing")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
