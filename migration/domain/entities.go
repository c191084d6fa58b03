package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies a destination entity class. Flush order matters:
// lookup kinds must be written before kinds that reference them.
type Kind string

const (
	KindCampus        Kind = "campus"
	KindGroupType     Kind = "group_type"
	KindSchedule      Kind = "schedule"
	KindGroup         Kind = "group"
	KindPerson        Kind = "person"
	KindGroupMember   Kind = "group_member"
	KindCommunication Kind = "person_communication"
	KindOccurrence    Kind = "occurrence"
	KindAttendance    Kind = "attendance"
	KindBatch         Kind = "financial_batch"
	KindTransaction   Kind = "financial_transaction"
)

// FlushOrder is the dependency-safe write order for staged entities.
var FlushOrder = []Kind{
	KindCampus,
	KindGroupType,
	KindSchedule,
	KindGroup,
	KindPerson,
	KindGroupMember,
	KindCommunication,
	KindOccurrence,
	KindAttendance,
	KindBatch,
	KindTransaction,
}

// Entity is anything the engine can stage and persist. ForeignKey is the
// marker recorded on the destination row; it is what makes re-runs
// idempotent.
type Entity interface {
	EntityKind() Kind
	ForeignKey() string
	DestinationID() uuid.UUID
}

type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
	GenderUnknown
)

func ParseGender(s string) Gender {
	switch s {
	case "Male", "male", "M":
		return GenderMale
	case "Female", "female", "F":
		return GenderFemale
	}
	return GenderUnknown
}

// FamilyRole ranks household positions. The ordinal is the tie-break rank
// used when resolving a household to its primary person.
type FamilyRole int

const (
	RoleAdult FamilyRole = iota
	RoleChild
	RoleVisitor
)

func ParseFamilyRole(s string) FamilyRole {
	switch s {
	case "Adult", "adult", "Head", "Spouse":
		return RoleAdult
	case "Child", "child":
		return RoleChild
	}
	return RoleVisitor
}

func (r FamilyRole) String() string {
	switch r {
	case RoleAdult:
		return "Adult"
	case RoleChild:
		return "Child"
	}
	return "Visitor"
}

type PersonRecord struct {
	ID                 uuid.UUID
	AliasID            uuid.UUID
	ForeignID          int
	HouseholdForeignID int
	FirstName          string
	LastName           string
	Gender             Gender
	Role               FamilyRole
	Email              string
	Phone              string
	Birthdate          *time.Time
	Marker             string
}

func (p PersonRecord) EntityKind() Kind         { return KindPerson }
func (p PersonRecord) ForeignKey() string       { return p.Marker }
func (p PersonRecord) DestinationID() uuid.UUID { return p.ID }
func (p PersonRecord) Key() PersonKey {
	return PersonKey{
		PersonID:           p.ID,
		AliasID:            p.AliasID,
		ForeignID:          p.ForeignID,
		HouseholdForeignID: p.HouseholdForeignID,
		Gender:             p.Gender,
		Role:               p.Role,
	}
}

// GroupNode is one node of the synthesized organizational tree.
type GroupNode struct {
	ID          uuid.UUID
	Key         string
	ParentID    *uuid.UUID
	GroupTypeID uuid.UUID
	CampusID    *uuid.UUID
	ScheduleID  *uuid.UUID
	Name        string
}

func (g GroupNode) EntityKind() Kind         { return KindGroup }
func (g GroupNode) ForeignKey() string       { return g.Key }
func (g GroupNode) DestinationID() uuid.UUID { return g.ID }

type GroupTypeNode struct {
	ID   uuid.UUID
	Key  string
	Name string
}

func (g GroupTypeNode) EntityKind() Kind         { return KindGroupType }
func (g GroupTypeNode) ForeignKey() string       { return g.Key }
func (g GroupTypeNode) DestinationID() uuid.UUID { return g.ID }

type ScheduleNode struct {
	ID        uuid.UUID
	Key       string
	Name      string
	DayOfWeek time.Weekday
	TimeOfDay time.Duration
}

func (s ScheduleNode) EntityKind() Kind         { return KindSchedule }
func (s ScheduleNode) ForeignKey() string       { return s.Key }
func (s ScheduleNode) DestinationID() uuid.UUID { return s.ID }

type GroupMemberRecord struct {
	ID       uuid.UUID
	Key      string
	GroupID  uuid.UUID
	PersonID uuid.UUID
	Role     string
}

func (m GroupMemberRecord) EntityKind() Kind         { return KindGroupMember }
func (m GroupMemberRecord) ForeignKey() string       { return m.Key }
func (m GroupMemberRecord) DestinationID() uuid.UUID { return m.ID }

// CommunicationRecord is one email address or phone number attached to a
// person. Family-wide source rows fan out into one record per member.
type CommunicationRecord struct {
	ID       uuid.UUID
	Key      string
	PersonID uuid.UUID
	Medium   string
	Value    string
}

func (c CommunicationRecord) EntityKind() Kind         { return KindCommunication }
func (c CommunicationRecord) ForeignKey() string       { return c.Key }
func (c CommunicationRecord) DestinationID() uuid.UUID { return c.ID }

// OccurrenceRecord is a single dated meeting of a group at a location and
// schedule. Key is the composite occurrence key, day-granular.
type OccurrenceRecord struct {
	ID         uuid.UUID
	Key        string
	GroupID    *uuid.UUID
	LocationID *uuid.UUID
	ScheduleID uuid.UUID
	Date       time.Time
}

func (o OccurrenceRecord) EntityKind() Kind         { return KindOccurrence }
func (o OccurrenceRecord) ForeignKey() string       { return o.Key }
func (o OccurrenceRecord) DestinationID() uuid.UUID { return o.ID }

type AttendanceRecord struct {
	ID            uuid.UUID
	Key           string
	OccurrenceID  uuid.UUID
	PersonAliasID uuid.UUID
	StartedAt     time.Time
	DidAttend     bool
}

func (a AttendanceRecord) EntityKind() Kind         { return KindAttendance }
func (a AttendanceRecord) ForeignKey() string       { return a.Key }
func (a AttendanceRecord) DestinationID() uuid.UUID { return a.ID }

type BatchRecord struct {
	ID        uuid.UUID
	ForeignID int
	Key       string
	Name      string
	Date      *time.Time
}

func (b BatchRecord) EntityKind() Kind         { return KindBatch }
func (b BatchRecord) ForeignKey() string       { return b.Key }
func (b BatchRecord) DestinationID() uuid.UUID { return b.ID }

type TransactionRecord struct {
	ID                uuid.UUID
	Key               string
	AuthorizedAliasID uuid.UUID
	BatchID           *uuid.UUID
	Amount            decimal.Decimal
	Fund              string
	Date              *time.Time
}

func (t TransactionRecord) EntityKind() Kind         { return KindTransaction }
func (t TransactionRecord) ForeignKey() string       { return t.Key }
func (t TransactionRecord) DestinationID() uuid.UUID { return t.ID }

// CampusRecord is read-only reference data: campuses exist in the
// destination before an import runs.
type CampusRecord struct {
	ID        uuid.UUID
	Key       string
	Name      string
	ShortCode string
}

func (c CampusRecord) EntityKind() Kind         { return KindCampus }
func (c CampusRecord) ForeignKey() string       { return c.Key }
func (c CampusRecord) DestinationID() uuid.UUID { return c.ID }
