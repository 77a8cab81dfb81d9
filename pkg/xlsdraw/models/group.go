package models

// DrawingGroupInfo summarizes the workbook-wide Dgg record.
type DrawingGroupInfo struct {
	// ShapeIDMax is one more than the highest shape id handed out.
	ShapeIDMax uint32 `json:"shape_id_max"`
	// NumShapesSaved is the number of shape ids handed out.
	NumShapesSaved uint32 `json:"num_shapes_saved"`
	// DrawingsSaved is the number of drawings in the workbook.
	DrawingsSaved uint32 `json:"drawings_saved"`
	// Clusters is the identifier cluster table.
	Clusters []ClusterInfo `json:"clusters,omitempty"`
	// PayloadSize is the encoded size of the DggContainer in bytes.
	PayloadSize int `json:"payload_size"`
	// Error is set when the cluster table fails validation.
	Error string `json:"error,omitempty"`
}

// ClusterInfo is one entry of the cluster table.
type ClusterInfo struct {
	// Base is the first shape id of the cluster.
	Base uint32 `json:"base"`
	// DrawingID is the owning drawing (0 when unowned).
	DrawingID uint16 `json:"drawing_id"`
	// Used is the number of ids handed out from the cluster.
	Used uint32 `json:"used"`
}
