// internal/domain/models/preferences.go
package models

import "time"

// Sidenav colors accepted by the layout.
var SidenavColors = []string{"primary", "dark", "info", "success", "warning", "error"}

// Sidenav types accepted by the layout.
var SidenavTypes = []string{"dark", "transparent", "white"}

// Preferences holds one admin's UI settings. One document per user in the
// ui_preferences collection.
type Preferences struct {
	UserID       string `bson:"user_id" json:"user_id"`
	SidenavColor string `bson:"sidenav_color" json:"sidenav_color"`
	SidenavType  string `bson:"sidenav_type" json:"sidenav_type"`
	FixedNavbar  bool   `bson:"fixed_navbar" json:"fixed_navbar"`
	MiniSidenav  bool   `bson:"mini_sidenav" json:"mini_sidenav"`
	DarkMode     bool   `bson:"dark_mode" json:"dark_mode"`

	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// DefaultPreferences returns the settings used when nothing has been saved.
func DefaultPreferences() Preferences {
	return Preferences{
		SidenavColor: "info",
		SidenavType:  "dark",
		FixedNavbar:  true,
	}
}

// SameSettings reports whether p and o carry the same UI values, ignoring
// owner and timestamps.
func (p Preferences) SameSettings(o Preferences) bool {
	return p.SidenavColor == o.SidenavColor &&
		p.SidenavType == o.SidenavType &&
		p.FixedNavbar == o.FixedNavbar &&
		p.MiniSidenav == o.MiniSidenav &&
		p.DarkMode == o.DarkMode
}
