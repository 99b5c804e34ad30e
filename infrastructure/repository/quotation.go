package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/database/sqlite"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
)

const cotacoesTable = "cotacoes"

type CotacaoRepository interface {
	UpsertCotacoes(ctx context.Context, cotacoes []domain.Cotacao) (int, error)
	ListCotacoes(ctx context.Context, filter domain.CotacaoFilter) ([]domain.Cotacao, error)
	CountCotacoes(ctx context.Context) (int, error)
	DistinctProdutos(ctx context.Context) ([]string, error)
	MonthlySeries(ctx context.Context, produto string) ([]domain.SerieMensal, error)
}

type cotacaoRepository struct {
	conn *sqlite.Connection
}

func NewCotacaoRepository(conn *sqlite.Connection) CotacaoRepository {
	return &cotacaoRepository{
		conn: conn,
	}
}

// UpsertCotacoes insere os registros em lote, ignorando duplicados pela
// chave (data, produto, preco_medio). Retorna quantos registros novos entraram.
func (r *cotacaoRepository) UpsertCotacoes(ctx context.Context, cotacoes []domain.Cotacao) (int, error) {
	inserted := 0

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, c := range cotacoes {
			queryBuilder := squirrel.
				Insert(cotacoesTable).
				Columns(
					"data", "ano", "mes", "dia",
					"produto", "variedade", "unidade", "categoria",
					"preco_medio", "preco_minimo", "preco_maximo",
					"num_cotacoes", "arquivo",
				).
				Values(
					c.Data, c.Ano, c.Mes, c.Dia,
					c.Produto, c.Variedade, c.Unidade, c.Categoria,
					c.PrecoMedio, c.PrecoMinimo, c.PrecoMaximo,
					c.NumCotacoes, c.Arquivo,
				).
				Suffix("ON CONFLICT (data, produto, preco_medio) DO NOTHING")

			insertSQL, insertArgs, err := queryBuilder.ToSql()
			if err != nil {
				return fmt.Errorf("erro ao construir consulta: %w", err)
			}

			result, err := tx.ExecContext(ctx, insertSQL, insertArgs...)
			if err != nil {
				return fmt.Errorf("erro ao inserir cotação: %w", err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(affected)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

func (r *cotacaoRepository) ListCotacoes(ctx context.Context, filter domain.CotacaoFilter) ([]domain.Cotacao, error) {
	queryBuilder := squirrel.
		Select(
			"id", "data", "ano", "mes", "dia",
			"produto", "variedade", "unidade", "categoria",
			"preco_medio", "preco_minimo", "preco_maximo",
			"num_cotacoes", "arquivo",
		).
		From(cotacoesTable).
		OrderBy("ano ASC", "mes ASC", "dia ASC", "produto ASC")

	if filter.Produto != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"produto": *filter.Produto})
	}

	if filter.Categoria != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"categoria": *filter.Categoria})
	}

	if filter.AnoInicio != nil {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"ano": *filter.AnoInicio})
	}

	if filter.AnoFim != nil {
		queryBuilder = queryBuilder.Where(squirrel.LtOrEq{"ano": *filter.AnoFim})
	}

	listSQL, listArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar cotações: %w", err)
	}
	defer rows.Close()

	var cotacoes []domain.Cotacao
	for rows.Next() {
		var c domain.Cotacao
		if err := rows.Scan(
			&c.ID, &c.Data, &c.Ano, &c.Mes, &c.Dia,
			&c.Produto, &c.Variedade, &c.Unidade, &c.Categoria,
			&c.PrecoMedio, &c.PrecoMinimo, &c.PrecoMaximo,
			&c.NumCotacoes, &c.Arquivo,
		); err != nil {
			return nil, fmt.Errorf("erro ao processar resultado: %w", err)
		}
		cotacoes = append(cotacoes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return cotacoes, nil
}

func (r *cotacaoRepository) CountCotacoes(ctx context.Context) (int, error) {
	var total int
	err := r.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM cotacoes").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar cotações: %w", err)
	}
	return total, nil
}

func (r *cotacaoRepository) DistinctProdutos(ctx context.Context) ([]string, error) {
	rows, err := r.conn.QueryContext(ctx, "SELECT DISTINCT produto FROM cotacoes ORDER BY produto ASC")
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar produtos: %w", err)
	}
	defer rows.Close()

	var produtos []string
	for rows.Next() {
		var produto string
		if err := rows.Scan(&produto); err != nil {
			return nil, fmt.Errorf("erro ao processar resultado: %w", err)
		}
		produtos = append(produtos, produto)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return produtos, nil
}

// MonthlySeries agrega a média mensal de preço de um produto, ordenada por período
func (r *cotacaoRepository) MonthlySeries(ctx context.Context, produto string) ([]domain.SerieMensal, error) {
	queryBuilder := squirrel.
		Select(
			"printf('%04d-%02d', ano, mes) AS periodo",
			"AVG(preco_medio) AS preco_medio",
			"COUNT(*) AS registros",
		).
		From(cotacoesTable).
		Where(squirrel.Eq{"produto": produto}).
		GroupBy("ano", "mes").
		OrderBy("ano ASC", "mes ASC")

	seriesSQL, seriesArgs, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir consulta: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, seriesSQL, seriesArgs...)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar série mensal: %w", err)
	}
	defer rows.Close()

	var serie []domain.SerieMensal
	for rows.Next() {
		var ponto domain.SerieMensal
		if err := rows.Scan(&ponto.Periodo, &ponto.PrecoMedio, &ponto.Registros); err != nil {
			return nil, fmt.Errorf("erro ao processar resultado: %w", err)
		}
		serie = append(serie, ponto)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante iteração: %w", err)
	}

	return serie, nil
}
