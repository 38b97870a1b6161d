package session

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// BadgerConfig configures a [BadgerStore].
type BadgerConfig struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in RAM; state is lost on Close.
	InMemory bool

	// Logger receives badger's own messages at debug level and above.
	// Nil silences them.
	Logger *log.Logger
}

// BadgerStore keeps checkpoints in an embedded BadgerDB, for a single
// server that wants durable state without running Redis or MongoDB.
type BadgerStore struct {
	db     *badger.DB
	prefix []byte
}

// badgerLogger adapts a charm logger to badger.Logger.
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(format string, args ...any)   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...any) { b.l.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...any)    { b.l.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...any)   { b.l.Debugf(format, args...) }

// NewBadgerStore opens (or creates) a BadgerDB.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, errors.New(errors.ErrCodeStore, "badger store needs a directory")
		}
		if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "create badger dir")
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open badger at %s", cfg.Dir)
	}
	return &BadgerStore{db: db, prefix: []byte("board/")}, nil
}

func (s *BadgerStore) key(project string) []byte {
	return append(append([]byte{}, s.prefix...), project...)
}

func (s *BadgerStore) Load(ctx context.Context, project string) (*State, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(project))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "badger get %s", project)
	}
	return UnmarshalState(data)
}

func (s *BadgerStore) Save(ctx context.Context, project string, st *State) error {
	if err := errors.ValidateProjectName(project); err != nil {
		return err
	}
	data, err := MarshalState(st)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(project), data)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "badger set %s", project)
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, project string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(project))
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "badger delete %s", project)
	}
	return nil
}

// Projects lists every project with a saved checkpoint.
func (s *BadgerStore) Projects() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().Key()[len(s.prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "badger scan")
	}
	return names, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

var _ Store = (*BadgerStore)(nil)
