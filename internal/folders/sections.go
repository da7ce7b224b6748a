package folders

import (
	"github.com/Lllllllleong/shipmentdocflow/internal/categories"
	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// Section is one checklist category of an invoice folder and the entries
// filed under it.
type Section struct {
	Category string  `json:"category"`
	Missing  bool    `json:"missing"`
	Entries  []Entry `json:"entries"`
}

// FolderSections lays a folder out the way operators review it: one section
// per required category in checklist order, then everything else.
type FolderSections struct {
	Direction models.Direction `json:"direction"`
	Required  []Section        `json:"required"`
	Others    []Entry          `json:"others"`
}

// Sections groups entries under the checklist for direction. Categories match
// case-insensitively; entries matching nothing go to Others.
func Sections(direction models.Direction, entries []Entry) (FolderSections, error) {
	required, err := categories.RequiredCategories(direction)
	if err != nil {
		return FolderSections{}, err
	}

	index := make(map[string]int, len(required))
	out := FolderSections{
		Direction: direction,
		Required:  make([]Section, len(required)),
		Others:    []Entry{},
	}
	for i, name := range required {
		index[categories.Fold(name)] = i
		out.Required[i] = Section{Category: name, Entries: []Entry{}}
	}

	for _, e := range entries {
		if i, ok := index[categories.Fold(e.Category)]; ok {
			out.Required[i].Entries = append(out.Required[i].Entries, e)
			continue
		}
		out.Others = append(out.Others, e)
	}
	for i := range out.Required {
		out.Required[i].Missing = len(out.Required[i].Entries) == 0
	}
	return out, nil
}
