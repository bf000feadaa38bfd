package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caremind/medtrack-agent/pkg/model"
	"go.uber.org/zap"
)

// TokenSource obtains a platform push token. It may suspend on an OS
// permission prompt; an empty token with a nil error means the user
// declined, which is an expected outcome rather than a failure.
type TokenSource func(ctx context.Context) (string, error)

// ServerDevice is one row of the server-side device registry
type ServerDevice struct {
	ID       string         `json:"id"`
	Token    string         `json:"token"`
	Platform model.Platform `json:"platform"`
}

// DeviceAPI is the server-side device registry boundary
type DeviceAPI interface {
	RegisterDevice(ctx context.Context, platform model.Platform, token string) (string, error)
	ListDevices(ctx context.Context) ([]ServerDevice, error)
	DeleteDevice(ctx context.Context, id string) error
}

// RegistrationStore persists the single local DeviceRegistration record.
// Get returns nil without error when no record is cached.
type RegistrationStore interface {
	GetRegistration(ctx context.Context) (*model.DeviceRegistration, error)
	SaveRegistration(ctx context.Context, reg *model.DeviceRegistration) error
	ClearRegistration(ctx context.Context) error
}

// RegistrationResult is the typed outcome of EnsureRegistered. Upstream
// failures are carried here instead of being returned as call errors, so
// callers and tests can assert on the degraded path deterministically.
type RegistrationResult struct {
	Granted        bool    `json:"granted"`
	Token          string  `json:"token,omitempty"`
	ServerDeviceID *string `json:"server_device_id,omitempty"`
	UpstreamErr    error   `json:"-"`
}

// DeviceService reconciles the locally cached device registration with the
// server-side device registry. The local cache is a hint only; the server
// list is authoritative when reachable. The service is the sole mutator of
// the cached record, and each operation holds the mutex across its full
// read-modify-write so a late-finishing register cannot race a revoke.
type DeviceService struct {
	api    DeviceAPI
	store  RegistrationStore
	logger *zap.Logger
	mu     sync.Mutex
}

// NewDeviceService creates a new DeviceService
func NewDeviceService(api DeviceAPI, store RegistrationStore, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		api:    api,
		store:  store,
		logger: logger,
	}
}

// EnsureRegistered obtains a push token and syncs it with the server
// registry. Permission denial yields granted=false without error. Server
// failure still yields granted=true with the token and no server id;
// local notification scheduling keeps working even when push sync is
// degraded, and the next app start retries the sync.
func (s *DeviceService) EnsureRegistered(ctx context.Context, platform model.Platform, obtainToken TokenSource) (RegistrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := obtainToken(ctx)
	if err != nil || token == "" {
		if err != nil {
			s.logger.Warn("push token unavailable", zap.Error(err))
		} else {
			s.logger.Info("push permission denied by user")
		}
		return RegistrationResult{Granted: false}, nil
	}

	cached, err := s.store.GetRegistration(ctx)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("failed to read cached registration: %w", err)
	}

	// Token and id already in sync, nothing to do.
	if cached != nil && cached.Token == token && cached.ServerDeviceID != nil {
		s.logger.Info("device registration already current",
			zap.String("server_device_id", *cached.ServerDeviceID),
		)
		return RegistrationResult{Granted: true, Token: token, ServerDeviceID: cached.ServerDeviceID}, nil
	}

	serverID, err := s.api.RegisterDevice(ctx, platform, token)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Abandoned mid-flight; leave the cache in its prior state.
			return RegistrationResult{Granted: true, Token: token, UpstreamErr: err}, nil
		}

		s.logger.Warn("device registration sync failed, continuing degraded",
			zap.Error(err),
			zap.String("platform", string(platform)),
		)

		// Cache the bare token so a later revoke can resolve the id
		// from the server list.
		reg := &model.DeviceRegistration{
			Token:     token,
			Platform:  platform,
			UpdatedAt: time.Now(),
		}
		if saveErr := s.store.SaveRegistration(ctx, reg); saveErr != nil {
			s.logger.Error("failed to cache bare token registration", zap.Error(saveErr))
		}

		return RegistrationResult{Granted: true, Token: token, UpstreamErr: err}, nil
	}

	reg := &model.DeviceRegistration{
		Token:          token,
		ServerDeviceID: &serverID,
		Platform:       platform,
		UpdatedAt:      time.Now(),
	}
	if err := s.store.SaveRegistration(ctx, reg); err != nil {
		return RegistrationResult{}, fmt.Errorf("failed to persist registration: %w", err)
	}

	s.logger.Info("device registered",
		zap.String("platform", string(platform)),
		zap.String("server_device_id", serverID),
	)

	return RegistrationResult{Granted: true, Token: token, ServerDeviceID: &serverID}, nil
}

// RevokeCurrent removes this device's server-side registration and clears
// the local cache. It returns true only when the server-side delete
// succeeded. The cache is cleared on every path that reaches the server
// decision; a revoke that cannot finish server-side must not leave logout
// blocked or the device retrying forever.
func (s *DeviceService) RevokeCurrent(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, err := s.store.GetRegistration(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read cached registration: %w", err)
	}
	if cached == nil {
		s.logger.Info("no cached device registration to revoke")
		return false, nil
	}

	deviceID := cached.ServerDeviceID
	if deviceID == nil {
		// Only a bare token is cached, from a prior partial failure.
		// Resolve the id from the authoritative server list.
		deviceID = s.resolveDeviceID(ctx, cached.Token)
	}

	revoked := false
	if deviceID != nil {
		if err := s.api.DeleteDevice(ctx, *deviceID); err != nil {
			s.logger.Warn("server-side device revoke failed",
				zap.Error(err),
				zap.String("server_device_id", *deviceID),
			)
		} else {
			revoked = true
		}
	}

	if err := s.store.ClearRegistration(ctx); err != nil {
		return revoked, fmt.Errorf("failed to clear cached registration: %w", err)
	}

	s.logger.Info("device registration revoked locally", zap.Bool("server_side", revoked))

	return revoked, nil
}

// resolveDeviceID looks the cached token up in the server device list.
// Returns nil when the list is unreachable or holds no matching token.
func (s *DeviceService) resolveDeviceID(ctx context.Context, token string) *string {
	devices, err := s.api.ListDevices(ctx)
	if err != nil {
		s.logger.Warn("failed to list server devices for revoke", zap.Error(err))
		return nil
	}
	for _, device := range devices {
		if device.Token == token {
			id := device.ID
			return &id
		}
	}
	s.logger.Info("cached token not present in server device list")
	return nil
}
