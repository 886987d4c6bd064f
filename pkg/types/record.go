// pkg/types/record.go - canonical recruitment data model shared across the pipeline
package types

import "time"

// ImportantDates holds the date milestones of a recruitment notice. Values
// are kept as the free-text strings published by the source ("10 Feb 2025",
// "Before Exam") because sources rarely agree on a parseable format.
type ImportantDates struct {
	Notification     string `json:"notification_date,omitempty" bson:"notification_date,omitempty"`
	ApplicationStart string `json:"application_start_date,omitempty" bson:"application_start_date,omitempty"`
	ApplicationLast  string `json:"application_last_date,omitempty" bson:"application_last_date,omitempty"`
	FeePaymentLast   string `json:"fee_payment_last_date,omitempty" bson:"fee_payment_last_date,omitempty"`
	Exam             string `json:"exam_date,omitempty" bson:"exam_date,omitempty"`
	AdmitCard        string `json:"admit_card_date,omitempty" bson:"admit_card_date,omitempty"`
	Result           string `json:"result_date,omitempty" bson:"result_date,omitempty"`
	AnswerKey        string `json:"answer_key_date,omitempty" bson:"answer_key_date,omitempty"`
	MeritList        string `json:"merit_list_date,omitempty" bson:"merit_list_date,omitempty"`
}

// DateEntry is a raw label/value pair lifted from a dates table before the
// normalizer maps it onto the ImportantDates milestones.
type DateEntry struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

// FeeEntry is one application-fee row.
type FeeEntry struct {
	Category string `json:"category" bson:"category"`
	Amount   int    `json:"amount" bson:"amount"`
	Note     string `json:"note,omitempty" bson:"note,omitempty"`
}

// AgeLimit describes the age eligibility block. The relaxation columns carry
// category-specific upper limits when the source publishes them.
type AgeLimit struct {
	Min            string `json:"min_age,omitempty" bson:"min_age,omitempty"`
	Max            string `json:"max_age,omitempty" bson:"max_age,omitempty"`
	AsOn           string `json:"as_on_date,omitempty" bson:"as_on_date,omitempty"`
	Relaxation     string `json:"relaxation,omitempty" bson:"relaxation,omitempty"`
	GeneralMax     string `json:"general_max,omitempty" bson:"general_max,omitempty"`
	OBCMax         string `json:"obc_max,omitempty" bson:"obc_max,omitempty"`
	SCSTMax        string `json:"scst_max,omitempty" bson:"scst_max,omitempty"`
}

// IsEmpty reports whether no age field was extracted.
func (a AgeLimit) IsEmpty() bool {
	return a == AgeLimit{}
}

// Position is one advertised post with its count and eligibility text.
// Count stays a string because sources mix numbers with annotations
// ("120 (SC: 30)").
type Position struct {
	Name          string `json:"post_name" bson:"post_name"`
	Count         string `json:"total_post,omitempty" bson:"total_post,omitempty"`
	Area          string `json:"area,omitempty" bson:"area,omitempty"`
	Qualification string `json:"qualification,omitempty" bson:"qualification,omitempty"`
}

// VacancyDetails aggregates positions and the reconciled total.
type VacancyDetails struct {
	TotalPosts int        `json:"total_posts" bson:"total_posts"`
	Positions  []Position `json:"positions" bson:"positions"`
}

// DistrictRow is one row of a district-wise breakdown table.
type DistrictRow struct {
	District string `json:"district" bson:"district"`
	Posts    string `json:"total_post" bson:"total_post"`
	LastDate string `json:"last_date,omitempty" bson:"last_date,omitempty"`
	Link     string `json:"link,omitempty" bson:"link,omitempty"`
}

// RecruitmentRecord is the canonical structured representation of one
// recruitment notice, assembled from classified page fragments.
//
// Collections are always non-nil after assembly; numeric fields default to
// zero rather than being omitted.
type RecruitmentRecord struct {
	Title        string `json:"title" bson:"title"`
	Organization string `json:"organization" bson:"organization"`

	// SourceURL is the full fetched address. SourcePath is the
	// scheme/host-stripped path used as the natural-key candidate; it is not
	// guaranteed unique across mirrored postings.
	SourceURL  string `json:"source_url" bson:"source_url"`
	SourcePath string `json:"source_path" bson:"source_path"`

	Dates      ImportantDates `json:"important_dates" bson:"important_dates"`
	RawDates   []DateEntry    `json:"raw_dates" bson:"raw_dates"`
	Fees       []FeeEntry     `json:"application_fee" bson:"application_fee"`
	FeeNote    string         `json:"fee_note,omitempty" bson:"fee_note,omitempty"`
	Age        AgeLimit       `json:"age_limit" bson:"age_limit"`
	Vacancy    VacancyDetails `json:"vacancy_details" bson:"vacancy_details"`

	Eligibility      []string          `json:"eligibility" bson:"eligibility"`
	SelectionProcess []string          `json:"selection_process" bson:"selection_process"`
	Links            map[string]string `json:"important_links" bson:"important_links"`
	Districts        []DistrictRow     `json:"district_wise" bson:"district_wise"`

	// PageHash fingerprints the noise-reduced page content. A refresh
	// whose hash matches skips re-normalization.
	PageHash string `json:"page_hash,omitempty" bson:"page_hash,omitempty"`
}

// NewRecruitmentRecord returns a record with all collections allocated so
// callers can rely on key presence without nil checks.
func NewRecruitmentRecord() *RecruitmentRecord {
	return &RecruitmentRecord{
		RawDates:         []DateEntry{},
		Fees:             []FeeEntry{},
		Vacancy:          VacancyDetails{Positions: []Position{}},
		Eligibility:      []string{},
		SelectionProcess: []string{},
		Links:            map[string]string{},
		Districts:        []DistrictRow{},
	}
}

// EnsureCollections allocates any nil collection in place. Normalizer
// implementations call this before returning so the canonical field set is
// always complete.
func (r *RecruitmentRecord) EnsureCollections() {
	if r.RawDates == nil {
		r.RawDates = []DateEntry{}
	}
	if r.Fees == nil {
		r.Fees = []FeeEntry{}
	}
	if r.Vacancy.Positions == nil {
		r.Vacancy.Positions = []Position{}
	}
	if r.Eligibility == nil {
		r.Eligibility = []string{}
	}
	if r.SelectionProcess == nil {
		r.SelectionProcess = []string{}
	}
	if r.Links == nil {
		r.Links = map[string]string{}
	}
	if r.Districts == nil {
		r.Districts = []DistrictRow{}
	}
}

// StoredPosting is a RecruitmentRecord with persisted identity. Only the
// duplicate resolver and merge engine read or write ID and the timestamps.
type StoredPosting struct {
	ID        string            `json:"id" bson:"_id,omitempty"`
	Record    RecruitmentRecord `json:"record" bson:"record"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}
