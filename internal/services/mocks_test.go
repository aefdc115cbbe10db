package services

import (
	"context"
	"io"

	"github.com/ledgerpath/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type MockAccountLookup struct {
	mock.Mock
}

func (m *MockAccountLookup) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
