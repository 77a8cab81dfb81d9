package output

import (
	"bytes"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ukaji3/xlsdraw-go/pkg/xlsdraw/models"
)

// WriteMsgpack encodes a workbook report as MessagePack. Field names follow
// the JSON tags so both formats share one schema.
func WriteMsgpack(w io.Writer, wb *models.WorkbookDrawings) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	enc.SetOmitEmpty(true)
	enc.SetSortMapKeys(true)
	return enc.Encode(wb)
}

// ToMsgpack encodes a workbook report as MessagePack.
func ToMsgpack(wb *models.WorkbookDrawings) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteMsgpack(&buf, wb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromMsgpack decodes a workbook report written by WriteMsgpack.
func FromMsgpack(r io.Reader) (*models.WorkbookDrawings, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	var wb models.WorkbookDrawings
	if err := dec.Decode(&wb); err != nil {
		return nil, err
	}
	return &wb, nil
}
