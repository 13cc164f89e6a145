package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dekarrin/greibach/internal/grammar"
	"github.com/dekarrin/greibach/server/dao"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
)

func NewConversionsDBConn(file string) (*ConversionsDB, error) {
	repo := &ConversionsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

// ConversionsDB stores conversions in a single table. Grammars and outcomes
// are stored as base64-encoded REZI binary.
type ConversionsDB struct {
	db *sql.DB
}

func (repo *ConversionsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS conversions (
		id TEXT NOT NULL PRIMARY KEY,
		subject TEXT NOT NULL,
		input TEXT NOT NULL,
		all_orders INTEGER NOT NULL,
		outcomes TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *ConversionsDB) Create(ctx context.Context, c dao.Conversion) (dao.Conversion, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Conversion{}, fmt.Errorf("could not generate ID: %w", err)
	}

	input, err := encGrammar(c.Input)
	if err != nil {
		return dao.Conversion{}, fmt.Errorf("encode input grammar: %w", err)
	}
	outcomes, err := encOutcomes(c.Outcomes)
	if err != nil {
		return dao.Conversion{}, fmt.Errorf("encode outcomes: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO conversions (id, subject, input, all_orders, outcomes, created) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Conversion{}, wrapDBError(err)
	}
	defer stmt.Close()

	now := time.Now()

	_, err = stmt.ExecContext(ctx, newUUID.String(), c.Subject, input, c.AllOrders, outcomes, now.Unix())
	if err != nil {
		return dao.Conversion{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *ConversionsDB) GetAll(ctx context.Context) ([]dao.Conversion, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, subject, input, all_orders, outcomes, created FROM conversions ORDER BY created, rowid;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Conversion

	for rows.Next() {
		var id string
		var input string
		var outcomes string
		var created int64
		var c dao.Conversion
		err = rows.Scan(
			&id,
			&c.Subject,
			&input,
			&c.AllOrders,
			&outcomes,
			&created,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		c.ID, err = uuid.Parse(id)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid", id)
		}
		if err := decodeInto(&c, input, outcomes); err != nil {
			return all, fmt.Errorf("conversion %s: %w", id, err)
		}
		c.Created = time.Unix(created, 0)

		all = append(all, c)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *ConversionsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Conversion, error) {
	c := dao.Conversion{
		ID: id,
	}
	var input string
	var outcomes string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT subject, input, all_orders, outcomes, created FROM conversions WHERE id = ?;`,
		id.String(),
	)
	err := row.Scan(
		&c.Subject,
		&input,
		&c.AllOrders,
		&outcomes,
		&created,
	)
	if err != nil {
		return c, wrapDBError(err)
	}

	if err := decodeInto(&c, input, outcomes); err != nil {
		return c, fmt.Errorf("conversion %s: %w", id, err)
	}
	c.Created = time.Unix(created, 0)

	return c, nil
}

func (repo *ConversionsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Conversion, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM conversions WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *ConversionsDB) Close() error {
	return repo.db.Close()
}

func decodeInto(c *dao.Conversion, input, outcomes string) error {
	var err error
	c.Input, err = decGrammar(input)
	if err != nil {
		return fmt.Errorf("decode input grammar: %w", err)
	}
	c.Outcomes, err = decOutcomes(outcomes)
	if err != nil {
		return fmt.Errorf("decode outcomes: %w", err)
	}
	return nil
}

func encGrammar(g grammar.Grammar) (string, error) {
	data, err := g.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func decGrammar(s string) (grammar.Grammar, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return grammar.Grammar{}, err
	}
	var g grammar.Grammar
	if err := g.UnmarshalBinary(data); err != nil {
		return grammar.Grammar{}, err
	}
	return g, nil
}

func encOutcomes(outcomes []dao.Outcome) (string, error) {
	data := rezi.EncInt(len(outcomes))
	for _, o := range outcomes {
		data = append(data, rezi.EncInt(len(o.Order))...)
		for _, v := range o.Order {
			data = append(data, rezi.EncString(v)...)
		}
		data = append(data, rezi.EncString(o.Error)...)
		if o.Succeeded() {
			data = append(data, rezi.EncBinary(o.Output)...)
		}
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func decOutcomes(s string) ([]dao.Outcome, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	count, n, err := rezi.DecInt(data)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	data = data[n:]
	if count < 0 {
		return nil, fmt.Errorf("count < 0")
	}

	outcomes := make([]dao.Outcome, count)
	for i := range outcomes {
		orderLen, n, err := rezi.DecInt(data)
		if err != nil {
			return nil, fmt.Errorf("outcome %d: order length: %w", i, err)
		}
		data = data[n:]
		if orderLen < 0 {
			return nil, fmt.Errorf("outcome %d: order length < 0", i)
		}

		outcomes[i].Order = make([]string, orderLen)
		for j := range outcomes[i].Order {
			outcomes[i].Order[j], n, err = rezi.DecString(data)
			if err != nil {
				return nil, fmt.Errorf("outcome %d: order %d: %w", i, j, err)
			}
			data = data[n:]
		}

		outcomes[i].Error, n, err = rezi.DecString(data)
		if err != nil {
			return nil, fmt.Errorf("outcome %d: error: %w", i, err)
		}
		data = data[n:]

		if outcomes[i].Succeeded() {
			n, err = rezi.DecBinary(data, &outcomes[i].Output)
			if err != nil {
				return nil, fmt.Errorf("outcome %d: output: %w", i, err)
			}
			data = data[n:]
		}
	}

	return outcomes, nil
}
