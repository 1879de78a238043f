package model

// LogType is the severity of a log record.
type LogType string

const (
	LogInfo    LogType = "INFO"
	LogSuccess LogType = "SUCCESS"
	LogError   LogType = "ERROR"
)

// LogTypes lists every declared LogType.
var LogTypes = []LogType{LogInfo, LogSuccess, LogError}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// BookingStatuses lists every declared BookingStatus.
var BookingStatuses = []BookingStatus{
	BookingPending, BookingConfirmed, BookingCheckedIn,
	BookingCompleted, BookingCancelled, BookingNoShow,
}

// ReportStatus is the review state of a report.
type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportInProgress ReportStatus = "in_progress"
	ReportResolved   ReportStatus = "resolved"
	ReportClosed     ReportStatus = "closed"
	ReportRejected   ReportStatus = "rejected"
)

// ReportStatuses lists every declared ReportStatus.
var ReportStatuses = []ReportStatus{
	ReportPending, ReportInProgress, ReportResolved, ReportClosed, ReportRejected,
}

// ModelStatus is the deployment state of an ML model.
type ModelStatus string

const (
	ModelTraining   ModelStatus = "training"
	ModelActive     ModelStatus = "active"
	ModelInactive   ModelStatus = "inactive"
	ModelFailed     ModelStatus = "failed"
	ModelDeprecated ModelStatus = "deprecated"
)

// ModelStatuses lists every declared ModelStatus.
var ModelStatuses = []ModelStatus{
	ModelTraining, ModelActive, ModelInactive, ModelFailed, ModelDeprecated,
}

// ClientAppStatus is the provisioning state of a client application.
type ClientAppStatus string

const (
	ClientAppActive    ClientAppStatus = "active"
	ClientAppInactive  ClientAppStatus = "inactive"
	ClientAppSuspended ClientAppStatus = "suspended"
	ClientAppPending   ClientAppStatus = "pending"
)

// ClientAppStatuses lists every declared ClientAppStatus.
var ClientAppStatuses = []ClientAppStatus{
	ClientAppActive, ClientAppInactive, ClientAppSuspended, ClientAppPending,
}

// EntityType tags the kind of CRM entity a model or test targets.
type EntityType string

const (
	EntityProject  EntityType = "project"
	EntityTask     EntityType = "task"
	EntityBusiness EntityType = "business"
	EntityEmployee EntityType = "employee"
)

// EntityTypes lists every declared EntityType.
var EntityTypes = []EntityType{EntityProject, EntityTask, EntityBusiness, EntityEmployee}
