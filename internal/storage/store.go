package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"housing_go/internal/domain"
	"housing_go/internal/event"
	"housing_go/internal/market"

	_ "github.com/glebarez/go-sqlite"
)

// EventStore handles persistent storage of events and clearing results in SQLite.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new SQLite event store with WAL mode enabled.
func NewEventStore(dbPath string) (*EventStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
		"PRAGMA foreign_keys=ON;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		// WAL-first event log; id is the sequencer seq.
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY,
			type INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			payload BLOB NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			house INTEGER NOT NULL,
			buyer INTEGER NOT NULL,
			seller INTEGER NOT NULL,
			quality INTEGER NOT NULL,
			price REAL NOT NULL,
			bid_price REAL NOT NULL,
			initial_price REAL NOT NULL,
			listed_tick INTEGER NOT NULL,
			days_on_market REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_tick ON transactions(tick);`,
		`CREATE TABLE IF NOT EXISTS tick_stats (
			tick INTEGER PRIMARY KEY,
			sales INTEGER NOT NULL,
			bids INTEGER NOT NULL,
			offers INTEGER NOT NULL,
			avg_bid_price REAL NOT NULL,
			avg_offer_price REAL NOT NULL,
			avg_days_on_market REAL NOT NULL,
			sold_to_list_ratio REAL NOT NULL,
			price_index REAL NOT NULL,
			annual_appreciation REAL NOT NULL,
			avg_sale_price BLOB NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &EventStore{db: db}, nil
}

// Close closes the underlying database.
func (s *EventStore) Close() error {
	return s.db.Close()
}

// SaveEvent stores an event in the database.
func (s *EventStore) SaveEvent(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, tick, payload) VALUES (?, ?, ?, ?)",
		ev.GetSeq(), ev.GetType(), ev.GetTick(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// LoadEvents returns every event with seq >= fromSeq in sequence order.
func (s *EventStore) LoadEvents(ctx context.Context, fromSeq uint64) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, payload FROM events WHERE id >= ? ORDER BY id ASC", fromSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			id      uint64
			typ     event.Type
			payload []byte
		)
		if err := rows.Scan(&id, &typ, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev, err := decodeEvent(typ, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", id, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

func decodeEvent(typ event.Type, payload []byte) (event.Event, error) {
	var ev event.Event
	switch typ {
	case event.EvOfferListed:
		ev = &event.OfferListedEvent{}
	case event.EvOfferRepriced:
		ev = &event.OfferRepricedEvent{}
	case event.EvOfferWithdrawn:
		ev = &event.OfferWithdrawnEvent{}
	case event.EvBidSubmitted:
		ev = &event.BidSubmittedEvent{}
	case event.EvMarketCleared:
		ev = &event.MarketClearedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type %d", typ)
	}
	if err := json.Unmarshal(payload, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// GetLastSeq returns the highest stored seq, or 0 for an empty log.
func (s *EventStore) GetLastSeq(ctx context.Context) (uint64, error) {
	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(id) FROM events").Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to query last seq: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return uint64(last.Int64), nil
}

// SaveTick stores the outcome of one clearing atomically.
func (s *EventStore) SaveTick(ctx context.Context, stats market.Statistics, diag market.Diagnostics, txs []domain.Transaction) error {
	avg, err := json.Marshal(stats.AverageSalePrice)
	if err != nil {
		return fmt.Errorf("failed to marshal sale prices: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tick tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO tick_stats
		(tick, sales, bids, offers, avg_bid_price, avg_offer_price, avg_days_on_market,
		 sold_to_list_ratio, price_index, annual_appreciation, avg_sale_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.Tick, len(txs), diag.Bids, diag.Offers, diag.AverageBidPrice, diag.AverageOfferPrice,
		stats.AverageDaysOnMarket, stats.SoldToListRatio, stats.PriceIndex, stats.AnnualAppreciation, avg,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tick stats: %w", err)
	}

	for _, t := range txs {
		_, err = tx.ExecContext(ctx, `INSERT INTO transactions
			(tick, house, buyer, seller, quality, price, bid_price, initial_price, listed_tick, days_on_market)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Tick, t.House, t.Buyer, t.Seller, t.Quality, t.Price, t.BidPrice, t.InitialPrice, t.ListedTick, t.DaysOnMarket,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction for house %d: %w", t.House, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tick: %w", err)
	}
	return nil
}

// TickRow is one stored row of tick_stats.
type TickRow struct {
	Tick                int64
	Sales               int
	Bids                int
	Offers              int
	AverageBidPrice     float64
	AverageOfferPrice   float64
	AverageDaysOnMarket float64
	SoldToListRatio     float64
	PriceIndex          float64
	AnnualAppreciation  float64
	AverageSalePrice    []float64
}

// LoadTicks returns all stored tick statistics ordered by tick.
func (s *EventStore) LoadTicks(ctx context.Context) ([]TickRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick, sales, bids, offers, avg_bid_price, avg_offer_price,
		avg_days_on_market, sold_to_list_ratio, price_index, annual_appreciation, avg_sale_price
		FROM tick_stats ORDER BY tick ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tick stats: %w", err)
	}
	defer rows.Close()

	var out []TickRow
	for rows.Next() {
		var (
			r   TickRow
			avg []byte
		)
		if err := rows.Scan(&r.Tick, &r.Sales, &r.Bids, &r.Offers, &r.AverageBidPrice, &r.AverageOfferPrice,
			&r.AverageDaysOnMarket, &r.SoldToListRatio, &r.PriceIndex, &r.AnnualAppreciation, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan tick stats: %w", err)
		}
		if err := json.Unmarshal(avg, &r.AverageSalePrice); err != nil {
			return nil, fmt.Errorf("failed to decode sale prices for tick %d: %w", r.Tick, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadTransactions returns all stored transactions in insertion order.
func (s *EventStore) LoadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick, house, buyer, seller, quality, price, bid_price,
		initial_price, listed_tick, days_on_market FROM transactions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.Tick, &t.House, &t.Buyer, &t.Seller, &t.Quality, &t.Price, &t.BidPrice,
			&t.InitialPrice, &t.ListedTick, &t.DaysOnMarket); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *EventStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata returns the value stored under key, and false if absent.
func (s *EventStore) GetMetadata(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read metadata %s: %w", key, err)
	}
	return v, true, nil
}
