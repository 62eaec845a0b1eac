package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/internal/stockalert/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAlertStore is a mock implementation of the AlertStore interface
type mockAlertStore struct {
	config    *store.AlertConfig
	products  []store.LowStockProduct
	saved     *store.AlertConfig
	error     error
	listError error
}

func (m *mockAlertStore) GetConfig(_ context.Context) (*store.AlertConfig, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.config, nil
}

func (m *mockAlertStore) SaveConfig(_ context.Context, config store.AlertConfig) (*store.AlertConfig, error) {
	if m.error != nil {
		return nil, m.error
	}
	config.UpdatedAt = time.Now()
	m.saved = &config
	return &config, nil
}

func (m *mockAlertStore) LowStockProducts(_ context.Context, _ int32) ([]store.LowStockProduct, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.products, nil
}

func Test_AlertService_ListAlerts(t *testing.T) {
	enabledConfig := &store.AlertConfig{DefaultThreshold: 10, Enabled: true}

	t.Run("Success - critical flag at half the threshold", func(t *testing.T) {
		// given a product at the critical bound and one merely low
		mockStore := &mockAlertStore{
			config: enabledConfig,
			products: []store.LowStockProduct{
				{ProductID: uuid.New(), Name: "Sugar 1kg", Quantity: 5, Threshold: 10},
				{ProductID: uuid.New(), Name: "Coffee 500g", Quantity: 8, Threshold: 10},
			},
		}
		service := NewService(mockStore)

		// when
		alerts, err := service.ListAlerts(context.Background())

		// then
		require.NoError(t, err)
		require.Len(t, alerts, 2)
		assert.True(t, alerts[0].Critical, "quantity 5 of threshold 10 is critical")
		assert.False(t, alerts[1].Critical)
	})

	t.Run("Success - per product threshold carried through", func(t *testing.T) {
		// given a product whose min_stock overrides the default
		mockStore := &mockAlertStore{
			config: enabledConfig,
			products: []store.LowStockProduct{
				{ProductID: uuid.New(), Name: "Olive oil", Quantity: 2, Threshold: 20},
			},
		}
		service := NewService(mockStore)

		// when
		alerts, err := service.ListAlerts(context.Background())

		// then
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, int32(20), alerts[0].Threshold)
		assert.True(t, alerts[0].Critical)
	})

	t.Run("Success - disabled config yields empty list", func(t *testing.T) {
		// given
		mockStore := &mockAlertStore{
			config:   &store.AlertConfig{DefaultThreshold: 10, Enabled: false},
			products: []store.LowStockProduct{{ProductID: uuid.New(), Name: "Sugar 1kg", Quantity: 1, Threshold: 10}},
		}
		service := NewService(mockStore)

		// when
		alerts, err := service.ListAlerts(context.Background())

		// then
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})

	t.Run("Error - store failure propagates", func(t *testing.T) {
		// given
		mockStore := &mockAlertStore{config: enabledConfig, listError: errors.New("db down")}
		service := NewService(mockStore)

		// when
		alerts, err := service.ListAlerts(context.Background())

		// then
		require.Error(t, err)
		assert.Nil(t, alerts)
	})
}

func Test_AlertService_Config(t *testing.T) {
	t.Run("Success - defaults when never saved", func(t *testing.T) {
		// given a store returning the built-in defaults
		mockStore := &mockAlertStore{
			config: &store.AlertConfig{DefaultThreshold: 10, Enabled: true, NotifyDashboard: true, NotifyMenu: true},
		}
		service := NewService(mockStore)

		// when
		config, err := service.GetConfig(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, int32(10), config.DefaultThreshold)
		assert.True(t, config.Enabled)
		assert.Empty(t, config.UpdatedAt, "never-saved config has no timestamp")
	})

	t.Run("Success - save round trip", func(t *testing.T) {
		// given
		mockStore := &mockAlertStore{}
		service := NewService(mockStore)

		// when
		saved, err := service.SaveConfig(context.Background(), ConfigUpdateDto{
			DefaultThreshold: 25, Enabled: true, NotifyDashboard: false, NotifyMenu: true,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, int32(25), saved.DefaultThreshold)
		assert.NotEmpty(t, saved.UpdatedAt)
		require.NotNil(t, mockStore.saved)
		assert.False(t, mockStore.saved.NotifyDashboard)
	})
}

func Test_AlertService_Policy(t *testing.T) {
	// given
	mockStore := &mockAlertStore{config: &store.AlertConfig{DefaultThreshold: 15, Enabled: true}}
	service := NewService(mockStore)

	// when
	threshold, enabled, err := service.Policy(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, int32(15), threshold)
	assert.True(t, enabled)
}
