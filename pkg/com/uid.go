package com

import "github.com/gofrs/uuid"

type Uid string

var NilUid = Uid("")

func NewUid() Uid { return Uid(uuid.Must(uuid.NewV4()).String()) }

func (u Uid) IsEmpty() bool  { return u == NilUid }
func (u Uid) String() string { return string(u) }

// Short returns a truncated form for log lines.
func (u Uid) Short() string {
	s := string(u)
	if len(s) < 7 {
		return s
	}
	return s[:3] + "." + s[len(s)-3:]
}
