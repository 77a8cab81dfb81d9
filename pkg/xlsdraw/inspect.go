package xlsdraw

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/aggregate"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/biff"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/drawing"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/escher"
	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/models"
)

// WorkbookStream is the compound-file stream holding a BIFF8 workbook.
const WorkbookStream = "Workbook"

// Inspect reports the drawing layer of an .xls file.
func Inspect(path string, opts Options) (*models.WorkbookDrawings, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	return InspectReader(f, filepath.Base(path), opts)
}

// InspectReader reports the drawing layer of a compound file read from ra.
func InspectReader(ra io.ReaderAt, bookName string, opts Options) (*models.WorkbookDrawings, error) {
	doc, err := mscfb.New(ra)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	var (
		stream []byte
		props  map[string]string
		entry  *mscfb.File
	)
	for entry, err = doc.Next(); err == nil; entry, err = doc.Next() {
		switch {
		case entry.Name == WorkbookStream && len(entry.Path) == 0:
			stream, err = io.ReadAll(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: read %s stream: %v", ErrInvalidFormat, WorkbookStream, err)
			}
		case entry.Name == SummaryInformation && msoleps.IsMSOLEPS(entry.Initial) && opts.ShouldIncludeProperties():
			p, perr := readProperties(entry)
			if perr != nil && opts.Strict {
				return nil, NewInspectError("", "properties", perr)
			}
			// Unreadable properties leave the report without them.
			props = p
		}
	}
	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if stream == nil {
		return nil, ErrNoWorkbookStream
	}

	records, err := biff.Parse(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	wb, err := InspectRecords(records, bookName, opts)
	if err != nil {
		return nil, err
	}
	wb.Properties = props
	return wb, nil
}

// InspectRecords reports the drawing layer of a parsed workbook stream.
func InspectRecords(records []biff.Record, bookName string, opts Options) (*models.WorkbookDrawings, error) {
	subs := biff.Substreams(records)
	if len(subs) == 0 || subs[0].Type != biff.SubstreamGlobals {
		return nil, fmt.Errorf("%w: workbook stream does not start with a globals substream", ErrInvalidFormat)
	}
	globals := records[subs[0].Start:subs[0].End]

	names, err := biff.SheetNames(globals)
	if err != nil {
		return nil, NewInspectError("", "globals", err)
	}

	wb := &models.WorkbookDrawings{
		BookName: bookName,
		Sheets:   []models.SheetDrawing{},
	}

	group, info, err := inspectGroup(globals)
	if err != nil {
		return nil, NewInspectError("", "group", err)
	}
	wb.Group = info

	for idx, sub := range subs[1:] {
		var name string
		if idx < len(names) {
			name = names[idx]
		}
		sheet, err := inspectSheet(flatten(records[sub.Start:sub.End]), group, opts)
		if err != nil {
			if opts.Strict {
				return nil, NewInspectError(name, "drawing", err)
			}
			sheet = &models.SheetDrawing{Error: err.Error()}
		}
		if sheet == nil {
			continue
		}
		sheet.Index = idx
		sheet.Name = name
		wb.Sheets = append(wb.Sheets, *sheet)
	}

	if group != nil {
		if err := group.Validate(); err != nil {
			if opts.Strict {
				return nil, NewInspectError("", "group", err)
			}
			wb.Group.Error = err.Error()
		}
	}
	return wb, nil
}

// inspectGroup reads the MSODRAWINGGROUP span of the globals substream.
func inspectGroup(globals []biff.Record) (*drawing.Group, *models.DrawingGroupInfo, error) {
	for i, rec := range globals {
		if rec.Sid != biff.MsoDrawingGroup {
			continue
		}
		dgg, _, err := aggregate.ParseGroup(globals, i)
		if err != nil {
			return nil, nil, err
		}
		group, err := aggregate.LoadGroup(dgg)
		if err != nil {
			return nil, nil, err
		}
		info := &models.DrawingGroupInfo{
			ShapeIDMax:     group.ShapeIDMax,
			NumShapesSaved: group.NumShapesSaved,
			DrawingsSaved:  group.DrawingsSaved,
			PayloadSize:    escher.Size(dgg),
		}
		for k, c := range group.Clusters {
			info.Clusters = append(info.Clusters, models.ClusterInfo{
				Base:      drawing.ClusterBase(k),
				DrawingID: c.DrawingGroupID,
				Used:      c.NumShapeIDsUsed,
			})
		}
		return group, info, nil
	}
	return nil, nil, nil
}

// flatten drops the nested substreams (embedded charts) of a sheet so the
// drawing records around them form one span.
func flatten(records []biff.Record) []biff.Record {
	out := make([]biff.Record, 0, len(records))
	depth := 0
	for i, rec := range records {
		switch {
		case rec.Sid == biff.BOF && i > 0:
			depth++
			continue
		case rec.Sid == biff.EOF && depth > 0:
			depth--
			continue
		}
		if depth == 0 {
			out = append(out, rec)
		}
	}
	return out
}

// inspectSheet reports the drawing of one sheet substream, or nil when the
// sheet has none.
func inspectSheet(records []biff.Record, group *drawing.Group, opts Options) (*models.SheetDrawing, error) {
	for i, rec := range records {
		if rec.Sid != biff.MsoDrawing {
			continue
		}
		agg, consumed, err := aggregate.Parse(records, i)
		if err != nil {
			return nil, err
		}
		payload, err := aggregate.Payload(records, i)
		if err != nil {
			return nil, err
		}

		sheet := &models.SheetDrawing{
			TailRecords: len(agg.Tail),
			PayloadSize: len(payload),
			Records:     consumed,
			LastShapeID: -1,
		}
		if dg, ok := agg.DrawingAtom(); ok {
			sheet.DrawingID = dg.DrawingID
			sheet.LastShapeID = dg.LastShapeID
			if group != nil {
				if _, err := group.AttachDrawing(dg); err != nil {
					return nil, err
				}
			}
		}
		for _, s := range agg.ShapeList() {
			info := models.ShapeInfo{
				ID:     s.ID,
				Type:   s.Type,
				Flags:  escher.SpFlagNames(s.Flags),
				Anchor: shapeRange(s.Node),
			}
			if opts.Range != nil && (info.Anchor == nil || !info.Anchor.Overlaps(*opts.Range)) {
				continue
			}
			descriptors, _ := agg.Shapes.Get(s.ID)
			for _, d := range descriptors {
				info.Descriptors = append(info.Descriptors, d.Name())
			}
			sheet.Shapes = append(sheet.Shapes, info)
		}

		if opts.Verify {
			result, err := verify(agg, payload, opts)
			if err != nil {
				return nil, fmt.Errorf("verify: %w", err)
			}
			sheet.Verify = result
		}
		return sheet, nil
	}
	return nil, nil
}

// verify re-serializes a copy of the aggregate, parses the result back and
// compares the re-encoded payload with the bytes read from the file.
func verify(agg *aggregate.Aggregate, payload []byte, opts Options) (*models.VerifyResult, error) {
	dup, err := agg.Clone()
	if err != nil {
		return nil, err
	}
	records, err := dup.Serialize(opts.SerializeOptions())
	if err != nil {
		return nil, err
	}
	back, _, err := aggregate.Parse(records, 0)
	if err != nil {
		return nil, err
	}
	if back == nil {
		return nil, fmt.Errorf("%w: serialized drawing has no MSODRAWING record", escher.ErrStructuralMismatch)
	}
	reencoded, err := escher.EncodeAll(back.Nodes)
	if err != nil {
		return nil, err
	}

	return &models.VerifyResult{
		Placement:   opts.Placement.String(),
		Records:     len(records),
		PayloadSize: len(reencoded),
		Stable:      bytes.Equal(reencoded, payload) && back.Shapes.Len() == agg.Shapes.Len(),
	}, nil
}
