package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/internal/domain/repository"
)

var ErrContactNotFound = errors.New("contact not found")

// ContactService owns per-account address books: CRUD, field search,
// upcoming-birthday reminders, and free-text search via Elasticsearch.
type ContactService struct {
	Contacts        repository.ContactRepository
	Logger          *logrus.Logger
	ES              *elasticsearch.Client
	ESContactsIndex string
}

func NewContactService(contacts repository.ContactRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ContactService {
	return &ContactService{Contacts: contacts, Logger: logger, ES: es, ESContactsIndex: esIndex}
}

type ContactInput struct {
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Birthday       time.Time
	AdditionalInfo string
}

func (s *ContactService) Create(ctx context.Context, ownerID string, in ContactInput) (*entity.Contact, error) {
	c := &entity.Contact{
		OwnerID:        ownerID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		Birthday:       in.Birthday,
		AdditionalInfo: in.AdditionalInfo,
	}
	if err := s.Contacts.Create(ctx, c); err != nil {
		return nil, err
	}
	_ = s.indexContact(ctx, c)
	return c, nil
}

func (s *ContactService) Get(ctx context.Context, id, ownerID string) (*entity.Contact, error) {
	c, err := s.Contacts.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrContactNotFound
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context, ownerID string) ([]entity.Contact, error) {
	return s.Contacts.ListByOwner(ctx, ownerID)
}

func (s *ContactService) Update(ctx context.Context, id, ownerID string, in ContactInput) (*entity.Contact, error) {
	c, err := s.Contacts.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrContactNotFound
	}
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.PhoneNumber = in.PhoneNumber
	c.Birthday = in.Birthday
	c.AdditionalInfo = in.AdditionalInfo
	if err := s.Contacts.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	_ = s.indexContact(ctx, c)
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.Contacts.Delete(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	s.deleteFromIndex(ctx, id)
	return nil
}

func (s *ContactService) Search(ctx context.Context, ownerID string, f repository.ContactFilter) ([]entity.Contact, error) {
	return s.Contacts.Search(ctx, ownerID, f)
}

// UpcomingBirthday is a reminder entry: the contact plus the date the
// birthday should be celebrated (weekend birthdays move to Monday).
type UpcomingBirthday struct {
	Contact     entity.Contact
	CelebrateOn time.Time
}

// UpcomingBirthdays returns the owner's contacts whose birthday falls
// within the next seven days of today.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID string, today time.Time) ([]UpcomingBirthday, error) {
	contacts, err := s.Contacts.ListWithBirthdays(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]UpcomingBirthday, 0)
	for _, c := range contacts {
		if on, ok := celebrationDate(c.Birthday, today); ok {
			out = append(out, UpcomingBirthday{Contact: c, CelebrateOn: on})
		}
	}
	return out, nil
}

// celebrationDate maps a birthday onto its next occurrence and reports
// whether that occurrence is within the next seven days of today. A
// Saturday or Sunday occurrence shifts to the following Monday.
func celebrationDate(birthday, today time.Time) (time.Time, bool) {
	if birthday.IsZero() {
		return time.Time{}, false
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	next := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, today.Location())
	if next.Before(today) {
		next = time.Date(today.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, today.Location())
	}
	if next.After(today.AddDate(0, 0, 7)) {
		return time.Time{}, false
	}
	switch next.Weekday() {
	case time.Saturday:
		next = next.AddDate(0, 0, 2)
	case time.Sunday:
		next = next.AddDate(0, 0, 1)
	}
	return next, true
}

func (s *ContactService) indexContact(ctx context.Context, c *entity.Contact) error {
	if s.ES == nil || s.ESContactsIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":           c.ID,
		"owner_id":     c.OwnerID,
		"first_name":   c.FirstName,
		"last_name":    c.LastName,
		"email":        c.Email,
		"phone_number": c.PhoneNumber,
		"updated_at":   c.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESContactsIndex, DocumentID: c.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(esCtx, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("contact_id", c.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("contact_id", c.ID).Warn("es index response error")
	}
	return nil
}

func (s *ContactService) deleteFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESContactsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESContactsIndex, DocumentID: id}
	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(esCtx, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("contact_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchText performs a free-text multi_match query over indexed contacts,
// restricted to the owner.
func (s *ContactService) SearchText(ctx context.Context, ownerID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESContactsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": map[string]any{
					"term": map[string]any{"owner_id": ownerID},
				},
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"first_name^2", "last_name^2", "email", "phone_number"},
					},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(esCtx),
		s.ES.Search.WithIndex(s.ESContactsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
