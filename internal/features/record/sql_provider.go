package record

import (
	"context"
	"database/sql"

	"go-admin/pkg/condition"
	"go-admin/pkg/pagination"

	sq "github.com/Masterminds/squirrel"
)

// SQLProvider lists rows of one table. The table name comes from a validated
// module definition, never from the request.
type SQLProvider struct {
	DB      *sql.DB
	Table   string
	Dialect condition.Dialect
}

func NewSQLProvider(db *sql.DB, table string, dialect condition.Dialect) *SQLProvider {
	return &SQLProvider{DB: db, Table: table, Dialect: dialect}
}

func (p *SQLProvider) countQuery(filter sq.Sqlizer) sq.SelectBuilder {
	q := sq.Select("COUNT(*)").From(p.Table).PlaceholderFormat(p.Dialect.Placeholder())
	if filter != nil {
		q = q.Where(filter)
	}
	return q
}

func (p *SQLProvider) findQuery(plan pagination.Plan[sq.Sqlizer]) sq.SelectBuilder {
	q := sq.Select("*").From(p.Table).PlaceholderFormat(p.Dialect.Placeholder())
	if plan.Filter != nil {
		q = q.Where(plan.Filter)
	}
	for _, k := range plan.Sort {
		dir := "ASC"
		if k.Desc() {
			dir = "DESC"
		}
		q = q.OrderBy(k.Field.Storage() + " " + dir)
	}
	return q.Limit(uint64(plan.Limit)).Offset(uint64(plan.Skip))
}

func (p *SQLProvider) Count(ctx context.Context, filter sq.Sqlizer) (int64, error) {
	query, args, err := p.countQuery(filter).ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := p.DB.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (p *SQLProvider) Find(ctx context.Context, plan pagination.Plan[sq.Sqlizer]) ([]Record, error) {
	query, args, err := p.findQuery(plan).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rowsToRecords(rows)
}

func rowsToRecords(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []Record{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
