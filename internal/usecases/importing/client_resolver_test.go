package importing

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository/mocks"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	importingmocks "github.com/vfg2006/ad-report-importer/internal/usecases/importing/mocks"
	"go.uber.org/mock/gomock"
)

func TestClientResolver_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClientRepo := mocks.NewMockClientRepository(ctrl)
	mockConfirmer := importingmocks.NewMockConfirmer(ctrl)

	resolver := &ClientResolver{
		clientRepo: mockClientRepo,
		generateID: func() (string, error) { return "cli001", nil },
	}

	ctx := context.Background()
	brl := "BRL"

	tests := []struct {
		name     string
		rawName  string
		currency string
		setup    func()
		wantErr  error
		validate func(t *testing.T, client *domain.Client)
	}{
		{
			name:     "Cliente existente recebe a moeda quando não tinha",
			rawName:  "Óptica  Centro",
			currency: "EUR",
			setup: func() {
				mockClientRepo.EXPECT().
					FindByNormalizedName(ctx, "optica centro").
					Return(&domain.Client{ID: "cli900", Name: "Óptica Centro", NormalizedName: "optica centro"}, nil)

				mockClientRepo.EXPECT().
					BackfillCurrency(ctx, "cli900", "EUR").
					Return(true, nil)
			},
			validate: func(t *testing.T, client *domain.Client) {
				assert.Equal(t, "cli900", client.ID)
				require.NotNil(t, client.Currency)
				assert.Equal(t, "EUR", *client.Currency)
			},
		},
		{
			name:     "Cliente existente não tem a moeda sobrescrita",
			rawName:  "Optica Centro",
			currency: "EUR",
			setup: func() {
				mockClientRepo.EXPECT().
					FindByNormalizedName(ctx, "optica centro").
					Return(&domain.Client{ID: "cli900", Currency: &brl}, nil)
			},
			validate: func(t *testing.T, client *domain.Client) {
				assert.Equal(t, "BRL", *client.Currency)
			},
		},
		{
			name:     "Cliente novo criado após confirmação",
			rawName:  " Loja   Norte ",
			currency: "EUR",
			setup: func() {
				mockClientRepo.EXPECT().
					FindByNormalizedName(ctx, "loja norte").
					Return(nil, nil)

				mockConfirmer.EXPECT().
					ConfirmClientCreation(ctx, "Loja Norte").
					Return(true, nil)

				mockClientRepo.EXPECT().
					Create(ctx, gomock.Any()).
					DoAndReturn(func(_ context.Context, c *domain.Client) error {
						assert.Equal(t, "cli001", c.ID)
						assert.Equal(t, "Loja Norte", c.Name)
						assert.Equal(t, "loja norte", c.NormalizedName)
						require.NotNil(t, c.Currency)
						assert.Equal(t, "EUR", *c.Currency)
						return nil
					})
			},
			validate: func(t *testing.T, client *domain.Client) {
				assert.Equal(t, "cli001", client.ID)
			},
		},
		{
			name:    "Criação recusada aborta",
			rawName: "Loja Sul",
			setup: func() {
				mockClientRepo.EXPECT().
					FindByNormalizedName(ctx, "loja sul").
					Return(nil, nil)

				mockConfirmer.EXPECT().
					ConfirmClientCreation(ctx, "Loja Sul").
					Return(false, nil)
			},
			wantErr: ErrClientCreationDeclined,
		},
		{
			name:    "Corrida na criação resolve com nova busca",
			rawName: "Loja Leste",
			setup: func() {
				gomock.InOrder(
					mockClientRepo.EXPECT().
						FindByNormalizedName(ctx, "loja leste").
						Return(nil, nil),
					mockConfirmer.EXPECT().
						ConfirmClientCreation(ctx, "Loja Leste").
						Return(true, nil),
					mockClientRepo.EXPECT().
						Create(ctx, gomock.Any()).
						Return(repository.ErrDuplicateClient),
					mockClientRepo.EXPECT().
						FindByNormalizedName(ctx, "loja leste").
						Return(&domain.Client{ID: "cli777", Name: "Loja Leste"}, nil),
				)
			},
			validate: func(t *testing.T, client *domain.Client) {
				assert.Equal(t, "cli777", client.ID)
			},
		},
		{
			name:    "Falha no banco ao buscar",
			rawName: "Loja Oeste",
			setup: func() {
				mockClientRepo.EXPECT().
					FindByNormalizedName(ctx, "loja oeste").
					Return(nil, errors.New("connection refused"))
			},
			wantErr: ErrDatabaseOperation,
		},
		{
			name:    "Erro do confirmer é repassado",
			rawName: "Loja Oeste",
			setup: func() {
				mockClientRepo.EXPECT().
					FindByNormalizedName(ctx, "loja oeste").
					Return(nil, nil)

				mockConfirmer.EXPECT().
					ConfirmClientCreation(ctx, "Loja Oeste").
					Return(false, context.Canceled)
			},
			wantErr: context.Canceled,
		},
		{
			name:    "Nome vazio",
			rawName: " - ",
			setup:   func() {},
			wantErr: ErrMissingClientName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			client, err := resolver.Resolve(ctx, tt.rawName, tt.currency, mockConfirmer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			tt.validate(t, client)
		})
	}
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "Sim", input: "s\n", want: true},
		{name: "Sim por extenso", input: " Sim \n", want: true},
		{name: "Yes sem quebra de linha", input: "yes", want: true},
		{name: "Não", input: "n\n", want: false},
		{name: "Enter vazio", input: "\n", want: false},
		{name: "Entrada encerrada", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			confirmer := PromptConfirmer{In: strings.NewReader(tt.input), Out: &out}

			ok, err := confirmer.ConfirmClientCreation(context.Background(), "Loja Norte")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Loja Norte")
		})
	}
}

func TestPromptConfirmer_Cancelado(t *testing.T) {
	in, writer := io.Pipe()
	defer writer.Close()

	var out strings.Builder
	confirmer := PromptConfirmer{In: in, Out: &out}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := confirmer.ConfirmClientCreation(ctx, "Loja Norte")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmação não respeitou o cancelamento")
	}

	// a leitura pendente termina quando a entrada é fechada
	require.NoError(t, in.Close())
}
