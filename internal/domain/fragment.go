package domain

// KnowledgeFragment is a unit of résumé text paired with its embedding
// vector. Fragments are created in bulk when the knowledge base is
// replaced and live in process memory, mirrored to a snapshot file.
type KnowledgeFragment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}
