package model

import (
	"encoding/json"
	"time"
)

type VisitorStatus string

const (
	StatusCheckedIn  VisitorStatus = "checked-in"
	StatusCheckedOut VisitorStatus = "checked-out"
)

type PrimaryVisitor struct {
	VisitorName string `json:"visitorName" bson:"visitor_name" validate:"required,min=1,max=100"`
	PhoneNumber string `json:"phoneNumber" bson:"phone_number" validate:"required,e164_phone"`
	Address     string `json:"address" bson:"address" validate:"required,min=1,max=300"`
	Reason      string `json:"reason" bson:"reason" validate:"required,min=1,max=300"`
	PhotoURL    string `json:"photoUrl" bson:"photo_url" validate:"required,max=2048"`
}

type Companion struct {
	Name        string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	PhoneNumber string `json:"phoneNumber,omitempty" bson:"phone_number,omitempty" validate:"omitempty,e164_phone"`
	Photo       string `json:"photo,omitempty" bson:"photo,omitempty" validate:"omitempty,max=2048"`
}

// VisitorGroup is one check-in: a primary visitor plus companions under a
// single group id. OutTime is nil while the group is on the premises.
type VisitorGroup struct {
	ID             string         `json:"id,omitempty" bson:"_id,omitempty"`
	GroupID        string         `json:"groupId" bson:"group_id"`
	PrimaryVisitor PrimaryVisitor `json:"primaryVisitor" bson:"primary_visitor"`
	Companions     []Companion    `json:"companions" bson:"companions"`
	InTime         time.Time      `json:"inTime" bson:"in_time"`
	OutTime        *time.Time     `json:"outTime" bson:"out_time"`
}

func (g *VisitorGroup) Status() VisitorStatus {
	if g.OutTime == nil {
		return StatusCheckedIn
	}
	return StatusCheckedOut
}

func (g *VisitorGroup) CheckedOut() bool {
	return g.OutTime != nil
}

// MarshalJSON adds the derived status so clients never compute it from outTime.
func (g VisitorGroup) MarshalJSON() ([]byte, error) {
	type alias VisitorGroup
	companions := g.Companions
	if companions == nil {
		companions = []Companion{}
	}
	a := alias(g)
	a.Companions = companions
	return json.Marshal(struct {
		alias
		Status VisitorStatus `json:"status"`
	}{
		alias:  a,
		Status: g.Status(),
	})
}

// VisitorRegistration is the flat body accepted by the register endpoint.
type VisitorRegistration struct {
	PrimaryVisitor
	Companions        []Companion `json:"companions" validate:"omitempty,max=50,dive"`
	VerificationToken string      `json:"verificationToken,omitempty"`
}

type CheckoutRequest struct {
	GroupID string `json:"groupId"`
}
