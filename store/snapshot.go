// store/snapshot.go
// Copyright(c) 2025 gismap contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	"github.com/gismap/gismap/math"
	"github.com/gismap/gismap/util"
)

const sessionFile = "session.msgpack"

// Session captures the view state restored on the next launch.
type Session struct {
	Center     math.Point2LL
	Zoom       int
	TileServer string
}

// SaveSession writes the session snapshot to the user cache directory.
func SaveSession(s Session) error {
	return util.CacheStoreObject(sessionFile, s)
}

// LoadSession restores the previous session snapshot; ok is false if
// there is none or it cannot be decoded.
func LoadSession() (Session, bool) {
	var s Session
	_, err := util.CacheRetrieveObject(sessionFile, &s)
	return s, err == nil
}
