package adapter

import (
	"github.com/google/uuid"

	"github.com/medlogiq/protocol-engine/internal/outbox"
	"github.com/medlogiq/protocol-engine/pkg/errors"
)

// EnsurePatientInGroup builds the update adding the patient to a host group.
func EnsurePatientInGroup(patientKey string, groupUUID string) (outbox.GroupMembership, error) {
	return groupMembership(patientKey, groupUUID, false)
}

// EnsurePatientNotInGroup builds the update removing the patient from a
// host group.
func EnsurePatientNotInGroup(patientKey string, groupUUID string) (outbox.GroupMembership, error) {
	return groupMembership(patientKey, groupUUID, true)
}

func groupMembership(patientKey, groupUUID string, remove bool) (outbox.GroupMembership, error) {
	if patientKey == "" {
		return outbox.GroupMembership{}, errors.ContractViolation("group membership requires a patient key")
	}
	if _, err := uuid.Parse(groupUUID); err != nil {
		return outbox.GroupMembership{}, errors.ContractViolation("group membership requires a valid group uuid")
	}
	return outbox.GroupMembership{PatientKey: patientKey, GroupUUID: groupUUID, Remove: remove}, nil
}
