package model

import "github.com/google/uuid"

type Role string

const (
	RoleCreator Role = "creator"
	RoleMember  Role = "member"
)

type Member struct {
	ID          uuid.UUID
	GroupID     uuid.UUID
	DisplayName string
	Role        Role
}

func (m Member) IsCreator() bool {
	return m.Role == RoleCreator
}

type Group struct {
	ID                uuid.UUID
	Name              string
	StreamingServices []string
}

// Actor is whoever requests a round transition.
// System actors bypass role checks; MemberID is ignored for them.
type Actor struct {
	MemberID uuid.UUID
	System   bool
}

func MemberActor(id uuid.UUID) Actor {
	return Actor{MemberID: id}
}

func SystemActor() Actor {
	return Actor{System: true}
}
