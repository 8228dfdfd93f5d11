package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository/mocks"
	"go.uber.org/mock/gomock"
)

func TestStagingCleanupService_CleanupStaging(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		maxAge   time.Duration
		setup    func(m *mocks.MockMetricRepository)
		validate func(t *testing.T, svc *StagingCleanupService, deleted int64, err error)
	}{
		{
			name:   "Apaga staging mais antigo que o limite",
			maxAge: 24 * time.Hour,
			setup: func(m *mocks.MockMetricRepository) {
				m.EXPECT().
					DeleteStaleStaged(gomock.Any(), now.Add(-24*time.Hour)).
					Return(int64(37), nil)
			},
			validate: func(t *testing.T, svc *StagingCleanupService, deleted int64, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(37), deleted)
				assert.Equal(t, int64(37), svc.GetStatus()["last_deleted"])
			},
		},
		{
			name:   "Erro do banco",
			maxAge: time.Hour,
			setup: func(m *mocks.MockMetricRepository) {
				m.EXPECT().
					DeleteStaleStaged(gomock.Any(), now.Add(-time.Hour)).
					Return(int64(0), errors.New("conexão perdida"))
			},
			validate: func(t *testing.T, svc *StagingCleanupService, deleted int64, err error) {
				require.Error(t, err)
				assert.Zero(t, deleted)

				status := svc.GetStatus()
				assert.Equal(t, false, status["running"])
				assert.Contains(t, status["last_error"], "conexão perdida")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			metricRepo := mocks.NewMockMetricRepository(ctrl)
			tt.setup(metricRepo)

			svc := &StagingCleanupService{
				purger: metricRepo,
				config: StagingCleanupConfig{MaxAge: tt.maxAge},
				now:    func() time.Time { return now },
			}

			deleted, err := svc.CleanupStaging(context.Background())
			tt.validate(t, svc, deleted, err)
		})
	}
}
