// Package sqlitestore is the sqlite-backed catalog store. Queries are built
// with goqu and executed through sqlx on the pure-Go sqlite driver.
package sqlitestore

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/eirikbell/circulate/catalog"
)

var dialect = goqu.Dialect("sqlite3")

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT NOT NULL,
	author           TEXT NOT NULL,
	isbn             TEXT NOT NULL UNIQUE,
	total_copies     INTEGER NOT NULL,
	available_copies INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS borrow_records (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	patron_id   TEXT NOT NULL,
	book_id     INTEGER NOT NULL REFERENCES books(id),
	borrow_date TIMESTAMP NOT NULL,
	due_date    TIMESTAMP NOT NULL,
	return_date TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_borrow_records_patron ON borrow_records(patron_id);
`

// Store implements catalog.Store on a sqlite database.
type Store struct {
	db  *sqlx.DB
	log *logrus.Logger
	now func() time.Time
}

// Open connects to the sqlite database at path (":memory:" works) and
// applies the schema.
func Open(path string, log *logrus.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	// sqlite serializes writers; a single connection avoids busy errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}

	return &Store{db: db, log: log, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type bookRow struct {
	ID              int64  `db:"id"`
	Title           string `db:"title"`
	Author          string `db:"author"`
	ISBN            string `db:"isbn"`
	TotalCopies     int    `db:"total_copies"`
	AvailableCopies int    `db:"available_copies"`
}

func (r bookRow) book() catalog.Book {
	return catalog.Book{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		TotalCopies:     r.TotalCopies,
		AvailableCopies: r.AvailableCopies,
	}
}

type recordRow struct {
	PatronID   string       `db:"patron_id"`
	BookID     int64        `db:"book_id"`
	Title      string       `db:"title"`
	Author     string       `db:"author"`
	BorrowDate time.Time    `db:"borrow_date"`
	DueDate    time.Time    `db:"due_date"`
	ReturnDate sql.NullTime `db:"return_date"`
}

func (r recordRow) record(now time.Time) catalog.BorrowRecord {
	rec := catalog.BorrowRecord{
		PatronID:   r.PatronID,
		BookID:     r.BookID,
		Title:      r.Title,
		Author:     r.Author,
		BorrowDate: r.BorrowDate,
		DueDate:    r.DueDate,
	}
	if r.ReturnDate.Valid {
		t := r.ReturnDate.Time
		rec.ReturnDate = &t
	} else {
		rec.IsOverdue = r.DueDate.Before(now)
	}
	return rec
}

func (s *Store) GetBookByID(id int64) (*catalog.Book, error) {
	query, args, err := dialect.From("books").Prepared(true).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build book query")
	}
	return s.getBook(query, args)
}

func (s *Store) GetBookByISBN(isbn string) (*catalog.Book, error) {
	query, args, err := dialect.From("books").Prepared(true).
		Where(goqu.C("isbn").Eq(isbn)).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build book query")
	}
	return s.getBook(query, args)
}

func (s *Store) getBook(query string, args []interface{}) (*catalog.Book, error) {
	var row bookRow
	if err := s.db.Get(&row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "query book")
	}
	book := row.book()
	return &book, nil
}

func (s *Store) AllBooks() ([]catalog.Book, error) {
	query, args, err := dialect.From("books").Prepared(true).
		Order(goqu.C("title").Asc()).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build catalog query")
	}
	var rows []bookRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "query catalog")
	}
	books := make([]catalog.Book, 0, len(rows))
	for _, r := range rows {
		books = append(books, r.book())
	}
	return books, nil
}

func (s *Store) InsertBook(title, author, isbn string, totalCopies int) bool {
	query, args, err := dialect.Insert("books").Prepared(true).
		Rows(goqu.Record{
			"title":            title,
			"author":           author,
			"isbn":             isbn,
			"total_copies":     totalCopies,
			"available_copies": totalCopies,
		}).
		ToSQL()
	if err != nil {
		s.log.Error("build book insert: ", err)
		return false
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		s.log.Error("insert book: ", err)
		return false
	}
	return true
}

func (s *Store) PatronBorrowCount(patronID string) (int, error) {
	query, args, err := dialect.From("borrow_records").Prepared(true).
		Select(goqu.COUNT("*")).
		Where(goqu.C("patron_id").Eq(patronID), goqu.C("return_date").IsNull()).
		ToSQL()
	if err != nil {
		return 0, errors.Wrap(err, "build borrow count query")
	}
	var count int
	if err := s.db.Get(&count, query, args...); err != nil {
		return 0, errors.Wrap(err, "query borrow count")
	}
	return count, nil
}

func (s *Store) PatronBorrowedBooks(patronID string) ([]catalog.BorrowRecord, error) {
	query, args, err := s.recordsQuery(patronID).
		Where(goqu.I("br.return_date").IsNull()).
		Order(goqu.I("br.borrow_date").Asc()).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build borrowed books query")
	}
	return s.selectRecords(query, args)
}

func (s *Store) PatronHistory(patronID string) ([]catalog.BorrowRecord, error) {
	query, args, err := s.recordsQuery(patronID).
		Order(goqu.I("br.borrow_date").Desc()).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build history query")
	}
	return s.selectRecords(query, args)
}

func (s *Store) recordsQuery(patronID string) *goqu.SelectDataset {
	return dialect.From(goqu.T("borrow_records").As("br")).Prepared(true).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("br.book_id").Eq(goqu.I("b.id")))).
		Select(
			goqu.I("br.patron_id").As("patron_id"),
			goqu.I("br.book_id").As("book_id"),
			goqu.I("b.title").As("title"),
			goqu.I("b.author").As("author"),
			goqu.I("br.borrow_date").As("borrow_date"),
			goqu.I("br.due_date").As("due_date"),
			goqu.I("br.return_date").As("return_date"),
		).
		Where(goqu.I("br.patron_id").Eq(patronID))
}

func (s *Store) selectRecords(query string, args []interface{}) ([]catalog.BorrowRecord, error) {
	var rows []recordRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "query borrow records")
	}
	now := s.now()
	records := make([]catalog.BorrowRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record(now))
	}
	return records, nil
}

func (s *Store) InsertBorrowRecord(patronID string, bookID int64, borrowDate, dueDate time.Time) bool {
	query, args, err := dialect.Insert("borrow_records").Prepared(true).
		Rows(goqu.Record{
			"patron_id":   patronID,
			"book_id":     bookID,
			"borrow_date": borrowDate,
			"due_date":    dueDate,
		}).
		ToSQL()
	if err != nil {
		s.log.Error("build borrow record insert: ", err)
		return false
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		s.log.Error("insert borrow record: ", err)
		return false
	}
	return true
}

func (s *Store) UpdateBorrowRecordReturnDate(patronID string, bookID int64, returnedAt time.Time) bool {
	query, args, err := dialect.Update("borrow_records").Prepared(true).
		Set(goqu.Record{"return_date": returnedAt}).
		Where(
			goqu.C("patron_id").Eq(patronID),
			goqu.C("book_id").Eq(bookID),
			goqu.C("return_date").IsNull(),
		).
		ToSQL()
	if err != nil {
		s.log.Error("build return date update: ", err)
		return false
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		s.log.Error("update return date: ", err)
		return false
	}
	affected, err := res.RowsAffected()
	if err != nil {
		s.log.Error("update return date: ", err)
		return false
	}
	return affected == 1
}

func (s *Store) UpdateBookAvailability(bookID int64, delta int) bool {
	// The guard keeps available_copies inside [0, total_copies] no matter
	// what the caller asks for; an out-of-range delta affects zero rows.
	query, args, err := dialect.Update("books").Prepared(true).
		Set(goqu.Record{"available_copies": goqu.L("available_copies + ?", delta)}).
		Where(
			goqu.C("id").Eq(bookID),
			goqu.L("available_copies + ? BETWEEN 0 AND total_copies", delta),
		).
		ToSQL()
	if err != nil {
		s.log.Error("build availability update: ", err)
		return false
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		s.log.Error("update availability: ", err)
		return false
	}
	affected, err := res.RowsAffected()
	if err != nil {
		s.log.Error("update availability: ", err)
		return false
	}
	return affected == 1
}
