package lease

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/repository/memory_repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *memory_repository.Store) *Service {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return New(log, store.Sites(), store.Clients(), store.LeaseRequests(), store.Notifications(), "manager@example.com")
}

func vacantSite(store *memory_repository.Store) domain.Site {
	return store.PutSite(domain.Site{
		SiteCode:           "BW-101",
		BasePricePerSqm:    200,
		CurrentPricePerSqm: 200,
		AreaSqm:            50,
		UsageType:          domain.UsageTypeRetail,
		Status:             domain.SiteStatusVacant,
	})
}

func TestService_Submit_NewClient(t *testing.T) {
	store := memory_repository.New()
	site := vacantSite(store)
	svc := newTestService(store)

	sub, err := svc.Submit(context.Background(), SubmitRequest{
		SiteID:                  site.ID,
		Client:                  &NewClient{ClientName: "Huda", Email: "huda@example.com"},
		BusinessName:            "Huda Bakery",
		ActivityType:            "F&B",
		RequestedDurationMonths: 12,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, sub.Request.ID)
	assert.Equal(t, domain.LeaseRequestStatusNew, sub.Request.Status)
	assert.InDelta(t, 9900.0, sub.Request.MonthlyRent, 1e-9)
	assert.InDelta(t, 1485.0, sub.Request.VATAmount, 1e-9)
	assert.InDelta(t, 198.0, sub.Request.PlatformFee, 1e-9)
	assert.InDelta(t, 11583.0, sub.Request.TotalAmount, 1e-9)
	assert.Equal(t, "bank_transfer", sub.Request.PaymentMethod)
	assert.Greater(t, sub.Request.PriorityScore, 5.0)

	client, err := store.Clients().GetByID(context.Background(), sub.Client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Huda Bakery", client.BusinessName)
	assert.Equal(t, "huda@example.com", client.Email())

	reserved, err := store.Sites().GetByID(context.Background(), site.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SiteStatusReserved, reserved.Status)

	notifications := store.AllNotifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationTypeLeaseRequest, notifications[0].Type)
	assert.Equal(t, "New lease request from Huda Bakery for site BW-101", notifications[0].Message)
	assert.Equal(t, "manager@example.com", notifications[0].RecipientEmail)
}

func TestService_Submit_ExistingClient(t *testing.T) {
	store := memory_repository.New()
	site := vacantSite(store)
	client := store.PutClient(domain.Client{ClientName: "Omar", PreviousLeases: 6, PaymentHistoryScore: 9.5})
	svc := newTestService(store)

	sub, err := svc.Submit(context.Background(), SubmitRequest{
		SiteID:       site.ID,
		ClientID:     &client.ID,
		BusinessName: "Omar Books",
		ActivityType: "Retail",
	})
	require.NoError(t, err)

	assert.Equal(t, client.ID, sub.Request.ClientID)
	assert.Equal(t, 12, sub.Request.RequestedDurationMonths)

	clients, err := store.Clients().ListClients(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestService_Submit_Errors(t *testing.T) {
	store := memory_repository.New()
	site := vacantSite(store)
	leased := store.PutSite(domain.Site{SiteCode: "BW-102", Status: domain.SiteStatusLeased})
	missing := uuid.New()
	svc := newTestService(store)

	tests := []struct {
		name    string
		in      SubmitRequest
		wantErr error
	}{
		{
			name:    "missing site",
			in:      SubmitRequest{Client: &NewClient{ClientName: "A"}, BusinessName: "A"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing client",
			in:      SubmitRequest{SiteID: site.ID, BusinessName: "A"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "duration too long",
			in:      SubmitRequest{SiteID: site.ID, Client: &NewClient{ClientName: "A"}, BusinessName: "A", RequestedDurationMonths: 500},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown site",
			in:      SubmitRequest{SiteID: uuid.New(), Client: &NewClient{ClientName: "A"}, BusinessName: "A"},
			wantErr: ErrSiteNotFound,
		},
		{
			name:    "site already leased",
			in:      SubmitRequest{SiteID: leased.ID, Client: &NewClient{ClientName: "A"}, BusinessName: "A"},
			wantErr: ErrSiteNotAvailable,
		},
		{
			name:    "unknown client",
			in:      SubmitRequest{SiteID: site.ID, ClientID: &missing, BusinessName: "A"},
			wantErr: ErrClientNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, store.AllNotifications())
}

type failingNotifications struct{}

func (failingNotifications) CreateNotification(context.Context, domain.Notification) (uuid.UUID, error) {
	return uuid.Nil, errors.New("queue down")
}

func TestService_Submit_NotificationFailureDoesNotFail(t *testing.T) {
	store := memory_repository.New()
	site := vacantSite(store)
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := New(log, store.Sites(), store.Clients(), store.LeaseRequests(), failingNotifications{}, "manager@example.com")

	_, err := svc.Submit(context.Background(), SubmitRequest{
		SiteID:       site.ID,
		Client:       &NewClient{ClientName: "Huda"},
		BusinessName: "Huda Bakery",
	})
	assert.NoError(t, err)
}

func TestService_Quote(t *testing.T) {
	store := memory_repository.New()
	site := vacantSite(store)
	svc := newTestService(store)

	q, err := svc.Quote(context.Background(), site.ID, 12)
	require.NoError(t, err)

	require.NotNil(t, q.Breakdown)
	require.NotNil(t, q.Totals)
	require.NotNil(t, q.ROI)
	assert.InDelta(t, 11583.0, q.Breakdown.TotalAmount, 1e-9)
	assert.InDelta(t, 138996.0, q.Totals.TotalAmount, 1e-9)

	_, err = svc.Quote(context.Background(), uuid.New(), 12)
	assert.ErrorIs(t, err, ErrSiteNotFound)

	_, err = svc.Quote(context.Background(), site.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_ListAndStats(t *testing.T) {
	store := memory_repository.New()
	site := vacantSite(store)
	client := store.PutClient(domain.Client{ClientName: "Omar"})
	store.PutLeaseRequest(domain.LeaseRequest{SiteID: site.ID, ClientID: client.ID, Status: domain.LeaseRequestStatusNew})
	store.PutLeaseRequest(domain.LeaseRequest{SiteID: site.ID, ClientID: client.ID, Status: domain.LeaseRequestStatusApproved})
	svc := newTestService(store)

	requests, err := svc.ListRequests(context.Background(), domain.LeaseRequestFilter{})
	require.NoError(t, err)
	assert.Len(t, requests, 2)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[domain.LeaseRequestStatusApproved])

	_, err = svc.GetRequest(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrLeaseRequestNotFound)
}
