// Package firestore stores habits and entries in Cloud Firestore under
// users/{uid}/habits, users/{uid}/entries and users/{uid}/meta.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/models"
	"github.com/julianstephens/prosper/internal/storage"
)

// Config addresses one user's data in a Firestore project.
type Config struct {
	ProjectID       string
	CredentialsFile string // optional; application default credentials otherwise
	CredentialsJSON []byte // service account document, e.g. from the keyring
	UserID          string
}

type Store struct {
	cfg    Config
	client *firestore.Client
}

var (
	_ storage.Provider  = (*Store)(nil)
	_ storage.MetaStore = (*Store)(nil)
)

func New(cfg Config) *Store {
	if cfg.UserID == "" {
		cfg.UserID = constants.DefaultUserID
	}
	return &Store{cfg: cfg}
}

// connect creates the client. FIRESTORE_EMULATOR_HOST is honoured by the client library.
func (s *Store) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	if s.cfg.ProjectID == "" {
		return fmt.Errorf("firestore project id is not configured")
	}

	var opts []option.ClientOption
	switch {
	case len(s.cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(s.cfg.CredentialsJSON))
	case s.cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(s.cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, s.cfg.ProjectID, opts...)
	if err != nil {
		return fmt.Errorf("failed to create firestore client: %w", err)
	}
	s.client = client
	return nil
}

// Init connects and records the user document. There is no schema to create.
func (s *Store) Init(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	_, err := s.user().Set(ctx, map[string]any{"updatedAt": time.Now().UTC()}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to initialize user document: %w", err)
	}
	return nil
}

// Load connects and probes the user's habits collection so an unreachable
// backend is reported here rather than on the first read.
func (s *Store) Load(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	iter := s.habits().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("failed to reach firestore: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *Store) GetConfigPath() string {
	return fmt.Sprintf("firestore://%s/%s/%s", s.cfg.ProjectID, constants.CollectionUsers, s.cfg.UserID)
}

func (s *Store) user() *firestore.DocumentRef {
	return s.client.Collection(constants.CollectionUsers).Doc(s.cfg.UserID)
}

func (s *Store) habits() *firestore.CollectionRef {
	return s.user().Collection(constants.CollectionHabits)
}

func (s *Store) entries() *firestore.CollectionRef {
	return s.user().Collection(constants.CollectionEntries)
}

func (s *Store) meta() *firestore.CollectionRef {
	return s.user().Collection("meta")
}

func (s *Store) ready() error {
	if s.client == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

// mapErr turns gRPC NotFound into storage.ErrNotFound.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// replaceAll deletes every document of coll not in keep and writes docs.
func (s *Store) replaceAll(ctx context.Context, coll *firestore.CollectionRef, docs map[string]any) error {
	existing, err := coll.DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", coll.ID, err)
	}

	bw := s.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for _, ref := range existing {
		if _, keep := docs[ref.ID]; keep {
			continue
		}
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	for id, doc := range docs {
		job, err := bw.Set(coll.Doc(id), doc)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write %s: %w", coll.ID, err)
		}
	}
	return nil
}

func (s *Store) LoadHabits(ctx context.Context) ([]models.Habit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	// Ordering client-side: a server OrderBy drops documents without a position.
	iter := s.habits().Documents(ctx)
	defer iter.Stop()

	docs := []habitDoc{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read habits: %w", err)
		}
		var doc habitDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode habit %s: %w", snap.Ref.ID, err)
		}
		if doc.ID == "" {
			doc.ID = snap.Ref.ID
		}
		docs = append(docs, doc)
	}
	sortHabitDocs(docs)

	habits := make([]models.Habit, 0, len(docs))
	for _, doc := range docs {
		habits = append(habits, fromHabitDoc(doc))
	}
	return habits, nil
}

// SaveHabits replaces the whole catalog, keeping the given order.
func (s *Store) SaveHabits(ctx context.Context, habits []models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}
	docs := make(map[string]any, len(habits))
	for i, h := range habits {
		docs[h.ID] = toHabitDoc(h, i)
	}
	return s.replaceAll(ctx, s.habits(), docs)
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}

	next := 0
	iter := s.habits().OrderBy("position", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	switch {
	case errors.Is(err, iterator.Done):
	case err != nil:
		return fmt.Errorf("failed to compute habit position: %w", err)
	default:
		var last habitDoc
		if err := snap.DataTo(&last); err != nil {
			return err
		}
		if last.Position != nil {
			next = *last.Position + 1
		}
	}

	_, err = s.habits().Doc(habit.ID).Set(ctx, toHabitDoc(habit, next))
	return mapErr(err, "habit "+habit.ID)
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	if err := s.ready(); err != nil {
		return err
	}

	ref := s.habits().Doc(habit.ID)
	snap, err := ref.Get(ctx)
	if err != nil {
		return mapErr(err, "habit "+habit.ID)
	}
	var current habitDoc
	if err := snap.DataTo(&current); err != nil {
		return err
	}

	doc := toHabitDoc(habit, 0)
	doc.Position = current.Position
	_, err = ref.Set(ctx, doc)
	return mapErr(err, "habit "+habit.ID)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.habits().Doc(id).Delete(ctx, firestore.Exists)
	return mapErr(err, "habit "+id)
}

func (s *Store) LoadEntries(ctx context.Context) ([]models.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	iter := s.entries().OrderBy("dateISO", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	entries := []models.Entry{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read entries: %w", err)
		}
		var doc entryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode entry %s: %w", snap.Ref.ID, err)
		}
		if doc.ID == "" {
			doc.ID = snap.Ref.ID
		}
		entries = append(entries, fromEntryDoc(doc))
	}
	return entries, nil
}

// SaveEntries replaces the whole entry history.
func (s *Store) SaveEntries(ctx context.Context, entries []models.Entry) error {
	if err := s.ready(); err != nil {
		return err
	}
	docs := make(map[string]any, len(entries))
	for _, e := range entries {
		docs[e.ID] = toEntryDoc(e)
	}
	return s.replaceAll(ctx, s.entries(), docs)
}

func (s *Store) AddEntry(ctx context.Context, entry models.Entry) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.entries().Doc(entry.ID).Set(ctx, toEntryDoc(entry))
	return mapErr(err, "entry "+entry.ID)
}

func (s *Store) UpdateEntry(ctx context.Context, entry models.Entry) error {
	if err := s.ready(); err != nil {
		return err
	}
	ref := s.entries().Doc(entry.ID)
	if _, err := ref.Get(ctx); err != nil {
		return mapErr(err, "entry "+entry.ID)
	}
	_, err := ref.Set(ctx, toEntryDoc(entry))
	return mapErr(err, "entry "+entry.ID)
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.entries().Doc(id).Delete(ctx, firestore.Exists)
	return mapErr(err, "entry "+id)
}

func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	snap, err := s.meta().Doc(key).Get(ctx)
	if err != nil {
		return "", mapErr(err, "meta "+key)
	}
	var doc metaDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", err
	}
	return doc.Value, nil
}

func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.meta().Doc(key).Set(ctx, metaDoc{Value: value, UpdatedAt: time.Now().UTC()})
	return mapErr(err, "meta "+key)
}
