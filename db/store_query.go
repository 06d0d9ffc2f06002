package db

import (
	sq "github.com/Masterminds/squirrel"
)

// ListOptions are the paging and fiql filter options of administrative listings
type ListOptions struct {
	PageSize int
	Page     int
	Sort     string
	Query    string
}

func (o *ListOptions) normalize() {
	if o.Page <= 0 {
		o.Page = 1
	}
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
}

func (o *ListOptions) offset() uint64 {
	return uint64((o.Page - 1) * o.PageSize)
}

func (d *DataStore) whereFromAdapater(
	table string,
	query string,
) (func(sq.SelectBuilder) sq.SelectBuilder, error) {
	if query != "" {
		where, err := d.adapters[table].Where(query)
		if err != nil {
			return nil, err
		}
		w, a, err := where.ToSql()
		if err != nil {
			return nil, err
		}
		return func(sb sq.SelectBuilder) sq.SelectBuilder {
			return sb.Where(w, a...)
		}, nil

	}
	return func(sb sq.SelectBuilder) sq.SelectBuilder {
		return sb
	}, nil
}

func (d *DataStore) orderByFromAdapater(
	q sq.SelectBuilder,
	table string,
	defaultOrderby string,
	opts ListOptions,
) sq.SelectBuilder {
	if opts.Sort != "" {
		order, err := d.adapters[table].OrderBy(opts.Sort)
		if err != nil {
			q = q.OrderBy(defaultOrderby)
		} else {
			or, _, _ := order.ToSql()
			q = q.OrderBy(or)
		}
	} else {
		q = q.OrderBy(defaultOrderby)
	}
	return q
}
