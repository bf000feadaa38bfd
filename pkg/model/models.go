package model

import (
	"strings"
	"time"
)

// Profile represents a patient profile managed by a caregiver
type Profile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// DoseStatus is the canonical, closed dose-status vocabulary
type DoseStatus string

const (
	DoseStatusTaken   DoseStatus = "taken"
	DoseStatusSkipped DoseStatus = "skipped"
	DoseStatusMissed  DoseStatus = "missed"
	DoseStatusPending DoseStatus = "pending"
	DoseStatusOther   DoseStatus = "other"
)

// DrugProduct represents the commercial product a drug is dispensed as
type DrugProduct struct {
	ID        string `json:"id"`
	BrandName string `json:"brand_name,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Drug represents the substance a regimen doses
type Drug struct {
	ID      string       `json:"id"`
	Name    string       `json:"name,omitempty"`
	Product *DrugProduct `json:"product,omitempty"`
}

// Regimen represents a medication schedule definition owned by the backend
type Regimen struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Drug *Drug  `json:"drug,omitempty"`
}

// IntakeRecord is one scheduled-or-actual dose event, created and mutated
// server-side; the agent only reads and classifies these.
type IntakeRecord struct {
	ID            string     `json:"id"`
	ProfileID     string     `json:"profile_id"`
	RegimenID     *string    `json:"regimen_id,omitempty"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	TakenTime     *time.Time `json:"taken_time,omitempty"`
	RawStatus     string     `json:"status"`

	// Display-name candidates; the backend populates an inconsistent
	// subset of these depending on API version and regimen shape.
	DrugName       *string  `json:"drug_name,omitempty"`
	MedicineName   *string  `json:"medicine_name,omitempty"`
	MedicationName *string  `json:"medication_name,omitempty"`
	RegimenName    *string  `json:"regimen_name,omitempty"`
	Regimen        *Regimen `json:"regimen,omitempty"`
	Drug           *Drug    `json:"drug,omitempty"`
}

// TimeWindow is an inclusive UTC time range; From never exceeds To
type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the window, boundaries included
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// MissedMedication is one entry of a report's worst-offender list
type MissedMedication struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AdherenceReport summarizes dose events over a window.
//
// TotalScheduled assumes the backend materializes one intake record per
// scheduled dose. If records are only created on check-in/skip/miss,
// PendingCount stays zero and TotalScheduled undercounts doses not yet
// reached; that ambiguity is inherited from the backend contract.
type AdherenceReport struct {
	TakenCount           int                `json:"taken_count"`
	SkippedCount         int                `json:"skipped_count"`
	MissedCount          int                `json:"missed_count"`
	PendingCount         int                `json:"pending_count"`
	TotalScheduled       int                `json:"total_scheduled"`
	AdherenceRatePercent int                `json:"adherence_rate_percent"`
	TopMissed            []MissedMedication `json:"top_missed"`
}

// Platform identifies the push-capable device platform
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformOther   Platform = "other"
)

// NormalizePlatform maps arbitrary client strings onto the closed set,
// ignoring case.
func NormalizePlatform(s string) Platform {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformAndroid, PlatformIOS:
		return p
	default:
		return PlatformOther
	}
}

// DeviceRegistration is the locally cached push registration record. It is
// a hint only; the server device list is authoritative when reachable.
type DeviceRegistration struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	Token          string    `json:"token"`
	ServerDeviceID *string   `json:"server_device_id,omitempty"`
	Platform       Platform  `json:"platform" gorm:"size:20"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RepeatMode describes how a reminder recurs
type RepeatMode string

const (
	RepeatDaily RepeatMode = "daily"
	RepeatOnce  RepeatMode = "once"
)

// TriggerKind describes how a trigger is expressed to the scheduler
type TriggerKind string

const (
	TriggerKindDaily    TriggerKind = "daily"
	TriggerKindAbsolute TriggerKind = "absolute"
)

// ReminderTrigger is a transient firing description handed to the
// notification scheduler. Daily triggers carry no concrete instant;
// absolute triggers always carry a FireAt strictly in the future.
type ReminderTrigger struct {
	Kind   TriggerKind `json:"kind"`
	Hour   int         `json:"hour"`
	Minute int         `json:"minute"`
	FireAt *time.Time  `json:"fire_at,omitempty"`
}

// Reminder is a locally persisted reminder definition
type Reminder struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	ProfileID string     `json:"profile_id" gorm:"index"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Hour      int        `json:"hour"`
	Minute    int        `json:"minute"`
	Repeat    RepeatMode `json:"repeat" gorm:"size:10"`
	FireAt    *time.Time `json:"fire_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
