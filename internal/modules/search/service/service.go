package service

import (
	"encoding/json"
	"html"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"carelink.id/clinicapi/internal/model"
)

const doctorIndex = "doctors"

// DoctorSearchService maintains the doctor directory index. All methods are
// safe to call on a nil service; indexing is an enrichment, never a gate on
// the primary mutation.
type DoctorSearchService interface {
	IndexDoctor(profile *model.DoctorProfile) error
	RemoveDoctor(id uint) error
	Search(query string) ([]DoctorDoc, error)
}

// DoctorDoc is the indexed shape of a doctor profile.
type DoctorDoc struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Bio        string `json:"bio"`
	Location   string `json:"location"`
	Department string `json:"department"`
}

type meiliDoctorSearch struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewDoctorSearchService(client meilisearch.ServiceManager) DoctorSearchService {
	s := &meiliDoctorSearch{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	return s
}

func (s *meiliDoctorSearch) initIndex() {
	filterable := []any{"department"}
	if _, err := s.client.Index(doctorIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logrus.WithError(err).Warn("failed to update doctors filterable attributes")
	}
}

func (s *meiliDoctorSearch) cleanForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliDoctorSearch) IndexDoctor(profile *model.DoctorProfile) error {
	doc := DoctorDoc{
		ID: profile.ID,
	}
	if profile.User != nil {
		doc.Name = profile.User.DisplayName()
	}
	if profile.Title != nil {
		doc.Title = *profile.Title
	}
	if profile.Bio != nil {
		doc.Bio = s.cleanForIndex(*profile.Bio)
	}
	if profile.Location != nil {
		doc.Location = *profile.Location
	}
	if profile.Department != nil {
		doc.Department = profile.Department.Name
	}

	_, err := s.client.Index(doctorIndex).AddDocuments([]DoctorDoc{doc}, strPtr("id"))
	return err
}

func (s *meiliDoctorSearch) RemoveDoctor(id uint) error {
	_, err := s.client.Index(doctorIndex).DeleteDocument(jsonNumber(id))
	return err
}

func (s *meiliDoctorSearch) Search(query string) ([]DoctorDoc, error) {
	resp, err := s.client.Index(doctorIndex).Search(query, &meilisearch.SearchRequest{
		Limit: 50,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]DoctorDoc, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc DoctorDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func strPtr(s string) *string {
	return &s
}
