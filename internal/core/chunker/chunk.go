package chunker

// Sentence is an intermediate segmentation result. Start and End are byte
// offsets into the source text; half-open. Sentences never appear in the
// final output.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Chunk is a contiguous (possibly overlapping-with-neighbor) span of a
// document, sized for downstream embedding and vector indexing.
type Chunk struct {
	ChunkID     string
	Text        string
	TokenLength int
	StartChar   int
	EndChar     int
	Metadata    map[string]any
}

// Record is the serializable form of a Chunk consumed by the indexing side.
type Record struct {
	ChunkID     string         `json:"chunk_id"`
	Text        string         `json:"text"`
	TokenLength int            `json:"token_length"`
	StartChar   int            `json:"start_char"`
	EndChar     int            `json:"end_char"`
	Metadata    map[string]any `json:"metadata"`
}

// ToRecord projects the chunk onto its serializable form. Metadata is
// never nil in the record.
func (c Chunk) ToRecord() Record {
	md := c.Metadata
	if md == nil {
		md = map[string]any{}
	}
	return Record{
		ChunkID:     c.ChunkID,
		Text:        c.Text,
		TokenLength: c.TokenLength,
		StartChar:   c.StartChar,
		EndChar:     c.EndChar,
		Metadata:    md,
	}
}

// ToRecords converts chunks for vector-index ingestion, one record per
// chunk, in emission order.
func ToRecords(chunks []Chunk) []Record {
	records := make([]Record, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, c.ToRecord())
	}
	return records
}
