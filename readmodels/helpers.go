package readmodels

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/finlifeos/finlife-core-go/adapters"
	"github.com/finlifeos/finlife-core-go/domain"
)

var ErrBuildingQuery = errors.New("building query failed")

var dialect = goqu.Dialect("postgres")

// Day bucketing for XP and activity follows the app's home timezone.
var mskZone = time.FixedZone("MSK", 3*60*60)

const (
	colAccountID = "account_id"
)

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func buildSQL(builder sqlBuilder) (string, error) {
	query, _, err := builder.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingQuery, err)
	}

	return query, nil
}

func execSQL(ctx context.Context, tx adapters.DBTx, builder sqlBuilder) error {
	query, err := buildSQL(builder)
	if err != nil {
		return err
	}

	_, execErr := tx.Exec(ctx, query)

	return execErr
}

func querySQL(ctx context.Context, tx adapters.DBTx, builder sqlBuilder) (adapters.DBRows, error) {
	query, err := buildSQL(builder)
	if err != nil {
		return nil, err
	}

	return tx.Query(ctx, query)
}

func rowExists(ctx context.Context, tx adapters.DBTx, table string, where ...goqu.Expression) (bool, error) {
	builder := dialect.From(table).Select(goqu.L("1")).Where(where...).Limit(1)

	rows, err := querySQL(ctx, tx, builder)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	return rows.Next(), nil
}

func deleteForAccount(ctx context.Context, tx adapters.DBTx, table string, accountID int64) error {
	return execSQL(ctx, tx, dialect.Delete(table).Where(goqu.C(colAccountID).Eq(accountID)))
}

// numericLit interpolates a decimal as an unquoted numeric literal.
func numericLit(d decimal.Decimal) goqu.Expression {
	return goqu.L("?::numeric", d.String())
}

func nullableInt(p *int64) any {
	if p == nil {
		return nil
	}

	return *p
}

func nullableSmallInt(p *int) any {
	if p == nil {
		return nil
	}

	return *p
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}

	return *p
}

func nullableDate(p *domain.Date) any {
	if p == nil {
		return nil
	}

	return p.String()
}

func nullableTimestamp(p *domain.Timestamp) any {
	if p == nil {
		return nil
	}

	return p.UTC().Format(time.RFC3339Nano)
}

func nullableDecimal(p *decimal.Decimal) any {
	if p == nil {
		return nil
	}

	return p.String()
}

// optValue maps an Optional to a SQL value, nil for explicit null.
func optValue[T any](o domain.Optional[T]) any {
	if !o.Valid {
		return nil
	}

	return o.Value
}

func optString(o domain.Optional[string]) any {
	return optValue(o)
}

func optInt(o domain.Optional[int]) any {
	return optValue(o)
}

func optInt64(o domain.Optional[int64]) any {
	return optValue(o)
}

func optBool(o domain.Optional[bool]) any {
	return optValue(o)
}

func optDate(o domain.Optional[domain.Date]) any {
	if !o.Valid {
		return nil
	}

	return o.Value.String()
}

func optTimestamp(o domain.Optional[domain.Timestamp]) any {
	if !o.Valid {
		return nil
	}

	return o.Value.UTC().Format(time.RFC3339Nano)
}

func optDecimal(o domain.Optional[decimal.Decimal]) any {
	if !o.Valid {
		return nil
	}

	return o.Value.String()
}
