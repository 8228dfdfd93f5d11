package importing

import (
	"context"
	"errors"
	"fmt"

	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/log"
	"github.com/vfg2006/ad-report-importer/pkg/textnorm"
	"github.com/vfg2006/ad-report-importer/pkg/utils"
)

// ClientResolver encontra ou cria o cliente de uma importação pelo nome normalizado
type ClientResolver struct {
	clientRepo repository.ClientRepository
	generateID func() (string, error)
}

func NewClientResolver(clientRepo repository.ClientRepository) *ClientResolver {
	return &ClientResolver{
		clientRepo: clientRepo,
		generateID: utils.GenerateID,
	}
}

// Resolve devolve o cliente com o nome informado. Cliente novo só é criado com a
// aprovação do confirmer; a moeda é gravada apenas quando o cadastro ainda não tem uma.
func (r *ClientResolver) Resolve(ctx context.Context, rawName, currency string, confirmer Confirmer) (*domain.Client, error) {
	name := textnorm.CollapseSpaces(rawName)
	normalized := textnorm.Fold(name)
	if normalized == "" {
		return nil, ErrMissingClientName
	}

	client, err := r.clientRepo.FindByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	if client != nil {
		r.backfillCurrency(ctx, client, currency)
		return client, nil
	}

	ok, err := confirmer.ConfirmClientCreation(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrClientCreationDeclined
	}

	id, err := r.generateID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerateID, err)
	}

	client = &domain.Client{
		ID:             id,
		Name:           name,
		NormalizedName: normalized,
	}
	if currency != "" {
		client.Currency = &currency
	}

	err = r.clientRepo.Create(ctx, client)
	if err == nil {
		log.ForContext(ctx).WithField("client_id", client.ID).Infof("Cliente %s criado", client.Name)
		return client, nil
	}
	if !errors.Is(err, repository.ErrDuplicateClient) {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}

	// outra importação criou o mesmo cliente entre a busca e o insert
	client, err = r.clientRepo.FindByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	r.backfillCurrency(ctx, client, currency)
	return client, nil
}

func (r *ClientResolver) backfillCurrency(ctx context.Context, client *domain.Client, currency string) {
	if currency == "" || client.Currency != nil {
		return
	}

	updated, err := r.clientRepo.BackfillCurrency(ctx, client.ID, currency)
	if err != nil {
		log.ForContext(ctx).WithError(err).Warnf("Não foi possível gravar a moeda do cliente %s", client.ID)
		return
	}
	if updated {
		client.Currency = &currency
	}
}
