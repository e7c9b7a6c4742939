package handler_test

import (
	"marketchat/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetUserByID(userID string) (*models.User, error) {
	args := m.Called(userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockStorage) SaveUser(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockStorage) NotifySuspension(channel, userID string) error {
	return m.Called(channel, userID).Error(0)
}

func (m *MockStorage) IsUserBanned(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) BanUser(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockStorage) UnbanUser(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockStorage) MarkOnline(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockStorage) MarkOffline(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockStorage) OnlineUsers() ([]string, error) {
	args := m.Called()
	users, _ := args.Get(0).([]string)
	return users, args.Error(1)
}

func (m *MockStorage) ResetPresence() error {
	return m.Called().Error(0)
}
