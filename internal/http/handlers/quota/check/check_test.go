package check

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockService реализует интерфейс check.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CanCreateConfig(ctx context.Context, userID int64, requested int) (bool, int, error) {
	args := m.Called(ctx, userID, requested)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func TestCheckHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "квоты хватает",
			body: `{"user_id": 42, "requested_count": 1}`,
			setupMock: func(m *MockService) {
				m.On("CanCreateConfig", mock.Anything, int64(42), 1).Return(true, 4, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"allowed":true`,
		},
		{
			name: "квоты не хватает",
			body: `{"user_id": 42, "requested_count": 5}`,
			setupMock: func(m *MockService) {
				m.On("CanCreateConfig", mock.Anything, int64(42), 5).Return(false, 2, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"allowed":false`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"user_id": }`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "ошибка валидации — нет user_id",
			body:           `{"requested_count": 1}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field UserID is a required field`,
		},
		{
			name:           "ошибка валидации — отрицательное количество",
			body:           `{"user_id": 42, "requested_count": -1}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field RequestedCount`,
		},
		{
			name: "ошибка сервиса",
			body: `{"user_id": 42, "requested_count": 1}`,
			setupMock: func(m *MockService) {
				m.On("CanCreateConfig", mock.Anything, int64(42), 1).Return(false, 0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not check quota"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/quota/check", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
