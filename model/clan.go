package model

// Clan is the wire entity shared by the clan store, the API service and the
// event payloads. The id is assigned by the authoritative source and never
// changes once observed; the tag is the human-assigned lookup key.
type Clan struct {
	ID  int    `json:"clan_id" gorm:"primaryKey;autoIncrement:false"`
	Tag string `json:"clan_tag" gorm:"uniqueIndex"`
}

// Lookup is the result of a lookup by tag. Absence is an explicit state
// rather than a nil or a zero value; transport failures travel on the error
// channel instead.
type Lookup struct {
	Clan  Clan
	Found bool
}

func Absent() Lookup {
	return Lookup{}
}

func Present(clan Clan) Lookup {
	return Lookup{Clan: clan, Found: true}
}
