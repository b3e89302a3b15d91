package models

import "fmt"

// Category is one of the five fixed spending classifications.
type Category string

const (
	CategoryMaterials    Category = "materials"
	CategoryStudentLabor Category = "student_labor"
	CategoryEquipment    Category = "equipment"
	CategoryActivity     Category = "activity"
	CategoryAllowance    Category = "allowance"
)

// Categories lists every legal category in display order.
var Categories = []Category{
	CategoryMaterials,
	CategoryStudentLabor,
	CategoryEquipment,
	CategoryActivity,
	CategoryAllowance,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
