package models

type UserStatus string
type UserRole string
type JobStatus string
type EmploymentType string
type ApplicationStatus string
type PresenceStatus string
type ViolationType string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	UserRoleApplicant UserRole = "applicant"
	UserRoleEmployer  UserRole = "employer"
	UserRoleAdmin     UserRole = "admin"

	JobStatusDraft    JobStatus = "draft"
	JobStatusActive   JobStatus = "active"
	JobStatusClosed   JobStatus = "closed"
	JobStatusArchived JobStatus = "archived"

	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentTemporary  EmploymentType = "temporary"

	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewed    ApplicationStatus = "reviewed"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusHired       ApplicationStatus = "hired"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"

	PresenceOnline  PresenceStatus = "online"
	PresenceIdle    PresenceStatus = "idle"
	PresenceAway    PresenceStatus = "away"
	PresenceOffline PresenceStatus = "offline"

	ViolationInvalidToken     ViolationType = "invalid_token"
	ViolationFailedLogin      ViolationType = "failed_login"
	ViolationForbiddenAccess  ViolationType = "forbidden_access"
	ViolationRateLimited      ViolationType = "rate_limited"
	ViolationSocketAuthFailed ViolationType = "socket_auth_failed"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleApplicant, UserRoleEmployer, UserRoleAdmin:
		return true
	}
	return false
}

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusBanned:
		return true
	}
	return false
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusDraft, JobStatusActive, JobStatusClosed, JobStatusArchived:
		return true
	}
	return false
}

func (t EmploymentType) Valid() bool {
	switch t {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentTemporary:
		return true
	}
	return false
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusShortlisted,
		ApplicationStatusRejected, ApplicationStatusHired, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// Presence, который клиент может выставить сам (offline выставляет сервер)
func (s PresenceStatus) Valid() bool {
	switch s {
	case PresenceOnline, PresenceIdle, PresenceAway:
		return true
	}
	return false
}

func (t ViolationType) Valid() bool {
	switch t {
	case ViolationInvalidToken, ViolationFailedLogin, ViolationForbiddenAccess,
		ViolationRateLimited, ViolationSocketAuthFailed:
		return true
	}
	return false
}

// applicationTransitions - разрешенные переходы статуса отклика со стороны работодателя
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:     {ApplicationStatusReviewed, ApplicationStatusShortlisted, ApplicationStatusRejected},
	ApplicationStatusReviewed:    {ApplicationStatusShortlisted, ApplicationStatusRejected, ApplicationStatusHired},
	ApplicationStatusShortlisted: {ApplicationStatusRejected, ApplicationStatusHired},
}

// CanTransitionTo проверяет переход статуса отклика
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanWithdraw - соискатель может отозвать отклик, пока решение не принято
func (s ApplicationStatus) CanWithdraw() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusShortlisted:
		return true
	}
	return false
}
