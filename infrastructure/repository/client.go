package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ad-report-importer/infrastructure/database/postgres"
	"github.com/vfg2006/ad-report-importer/internal/domain"
)

const (
	clientsTable               = "clients"
	clientsNormalizedNameIndex = "clients_normalized_name_key"
)

type ClientRepository interface {
	FindByNormalizedName(ctx context.Context, normalizedName string) (*domain.Client, error)
	Create(ctx context.Context, client *domain.Client) error
	BackfillCurrency(ctx context.Context, clientID, currency string) (bool, error)
	List(ctx context.Context) ([]*domain.Client, error)
}

type clientRepository struct {
	conn postgres.Conn
}

func NewClientRepository(conn postgres.Conn) ClientRepository {
	return &clientRepository{
		conn: conn,
	}
}

func (r *clientRepository) FindByNormalizedName(ctx context.Context, normalizedName string) (*domain.Client, error) {
	query, args, err := squirrel.
		Select("id, name, normalized_name, currency, created_at").
		From(clientsTable).
		Where(squirrel.Eq{"normalized_name": normalizedName}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	client := &domain.Client{}
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&client.ID,
		&client.Name,
		&client.NormalizedName,
		&client.Currency,
		&client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar cliente: %w", err)
	}

	return client, nil
}

// Create insere o cliente. Se outro processo criou o mesmo nome normalizado antes,
// retorna ErrDuplicateClient para que o chamador refaça a busca.
func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query, args, err := squirrel.
		Insert(clientsTable).
		Columns("id", "name", "normalized_name", "currency").
		Values(client.ID, client.Name, client.NormalizedName, client.Currency).
		Suffix("RETURNING created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&client.CreatedAt); err != nil {
		if postgres.IsUniqueViolation(err, clientsNormalizedNameIndex) {
			return ErrDuplicateClient
		}
		return fmt.Errorf("erro ao criar cliente: %w", err)
	}

	return nil
}

// BackfillCurrency preenche a moeda apenas quando ainda não existe
func (r *clientRepository) BackfillCurrency(ctx context.Context, clientID, currency string) (bool, error) {
	query, args, err := squirrel.
		Update(clientsTable).
		Set("currency", currency).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": clientID, "currency": nil}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("erro ao atualizar moeda do cliente: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *clientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	query, args, err := squirrel.
		Select("id, name, normalized_name, currency, created_at").
		From(clientsTable).
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client := &domain.Client{}
		if err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.NormalizedName,
			&client.Currency,
			&client.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear cliente: %w", err)
		}
		clients = append(clients, client)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return clients, nil
}
