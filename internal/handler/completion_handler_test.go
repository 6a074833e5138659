package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gig-market/internal/model"
	"gig-market/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCompletionService is a mock implementation of CompletionService.
type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) OpenRequest(ctx context.Context, orderID, sellerID uuid.UUID) (*model.OpenRequestResult, error) {
	args := m.Called(ctx, orderID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OpenRequestResult), args.Error(1)
}

func (m *MockCompletionService) ResolveRequest(ctx context.Context, requestID, actorID uuid.UUID, decision model.Decision) (*service.ResolveResult, error) {
	args := m.Called(ctx, requestID, actorID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResolveResult), args.Error(1)
}

func (m *MockCompletionService) ExpireOpenRequests(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestCompletionHandler_OpenRequest(t *testing.T) {
	logger := zerolog.Nop()

	orderID := uuid.New()
	sellerID := uuid.New()
	expires := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		path           string
		userHeader     string
		mockReturn     *model.OpenRequestResult
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			path:           "/api/orders/" + orderID.String() + "/completion-request",
			userHeader:     sellerID.String(),
			mockReturn:     &model.OpenRequestResult{RequestID: uuid.New(), Expires: expires},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Order not found",
			path:           "/api/orders/" + orderID.String() + "/completion-request",
			userHeader:     sellerID.String(),
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Non-seller forbidden",
			path:           "/api/orders/" + orderID.String() + "/completion-request",
			userHeader:     sellerID.String(),
			mockError:      model.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectService:  true,
		},
		{
			name:           "Duplicate open request",
			path:           "/api/orders/" + orderID.String() + "/completion-request",
			userHeader:     sellerID.String(),
			mockError:      model.ErrRequestOpen,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Order not active",
			path:           "/api/orders/" + orderID.String() + "/completion-request",
			userHeader:     sellerID.String(),
			mockError:      model.ErrOrderNotActive,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Invalid order ID",
			path:           "/api/orders/not-a-uuid/completion-request",
			userHeader:     sellerID.String(),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing user header",
			path:           "/api/orders/" + orderID.String() + "/completion-request",
			userHeader:     "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCompletionService)
			if tt.expectService {
				mockService.On("OpenRequest", mock.Anything, orderID, sellerID).
					Return(tt.mockReturn, tt.mockError)
			}

			h := NewCompletionHandler(mockService, logger)

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.userHeader != "" {
				req.Header.Set("X-User-ID", tt.userHeader)
			}
			rr := httptest.NewRecorder()

			h.OpenRequest(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusCreated {
				var result model.OpenRequestResult
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
				assert.Equal(t, tt.mockReturn.RequestID, result.RequestID)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestCompletionHandler_Resolve(t *testing.T) {
	logger := zerolog.Nop()

	requestID := uuid.New()
	actor := uuid.New()

	tests := []struct {
		name           string
		decision       string
		mockReturn     *service.ResolveResult
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Accept",
			decision:       "ACCEPT",
			mockReturn:     &service.ResolveResult{Status: model.RequestAccepted},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Decline",
			decision:       "DECLINE",
			mockReturn:     &service.ResolveResult{Status: model.RequestDeclined},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid decision",
			decision:       "APPROVE",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Already resolved",
			decision:       "ACCEPT",
			mockError:      model.ErrRequestResolved,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Expired",
			decision:       "ACCEPT",
			mockError:      model.ErrRequestExpired,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Wrong actor",
			decision:       "CANCEL",
			mockError:      model.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectService:  true,
		},
		{
			name:           "Request not found",
			decision:       "ACCEPT",
			mockError:      model.ErrRequestNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCompletionService)
			if tt.expectService {
				mockService.On("ResolveRequest", mock.Anything, requestID, actor, model.Decision(tt.decision)).
					Return(tt.mockReturn, tt.mockError)
			}

			h := NewCompletionHandler(mockService, logger)

			body, _ := json.Marshal(map[string]string{"decision": tt.decision})
			req := httptest.NewRequest(http.MethodPost, "/api/completion-requests/"+requestID.String()+"/resolve", bytes.NewReader(body))
			req.Header.Set("X-User-ID", actor.String())
			rr := httptest.NewRecorder()

			h.Resolve(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var result service.ResolveResult
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
				assert.Equal(t, tt.mockReturn.Status, result.Status)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestCompletionHandler_Resolve_InvalidBody(t *testing.T) {
	mockService := new(MockCompletionService)
	h := NewCompletionHandler(mockService, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/completion-requests/"+uuid.New().String()+"/resolve", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-User-ID", uuid.New().String())
	rr := httptest.NewRecorder()

	h.Resolve(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockService.AssertNotCalled(t, "ResolveRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
