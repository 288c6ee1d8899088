package otquery

import (
	"time"

	"github.com/npillmayer/foundry/ot"
)

// HeadTableInfo is a summary of the font-wide values of table 'head'.
type HeadTableInfo struct {
	Revision         float64
	UnitsPerEm       uint16
	Created          time.Time
	Modified         time.Time
	BBox             BoundingBox
	MacStyle         uint16
	IndexToLocFormat int16
}

// HeadInfo summarizes table 'head'.
// Returns (info, true) on success, or (zero, false) if the table is missing.
func HeadInfo(otf *ot.Font) (HeadTableInfo, bool) {
	var info HeadTableInfo
	if otf == nil {
		return info, false
	}
	head := otf.Lookup(ot.T("head")).AsHead()
	if head == nil {
		return info, false
	}
	info.Revision = head.FontRevisionValue()
	info.UnitsPerEm = head.UnitsPerEm
	info.Created = head.CreatedTime()
	info.Modified = head.ModifiedTime()
	info.BBox = BoundingBox{
		MinX: sfntUnits(head.XMin), MinY: sfntUnits(head.YMin),
		MaxX: sfntUnits(head.XMax), MaxY: sfntUnits(head.YMax),
	}
	info.MacStyle = head.MacStyle
	info.IndexToLocFormat = head.IndexToLocFormat
	return info, true
}
