package models

// ColumnMeta describes how a status column is labelled on the board.
type ColumnMeta struct {
	Status TaskStatus `json:"status"`
	Title  string     `json:"title"`
	// Short is the label used by the status picker.
	Short string `json:"short"`
	Icon  string `json:"icon"`
}

var columnMeta = map[TaskStatus]ColumnMeta{
	StatusTodo:       {Status: StatusTodo, Title: "To Do", Short: "To Do", Icon: "📝"},
	StatusInProgress: {Status: StatusInProgress, Title: "In Progress", Short: "In Progress", Icon: "⚙️"},
	StatusReview:     {Status: StatusReview, Title: "Review", Short: "Review", Icon: "🔎"},
	StatusCompleted:  {Status: StatusCompleted, Title: "Completed", Short: "Done", Icon: "✅"},
}

// Meta returns the column metadata for s. Unknown statuses get their raw
// value as title.
func (s TaskStatus) Meta() ColumnMeta {
	if m, ok := columnMeta[s]; ok {
		return m
	}
	return ColumnMeta{Status: s, Title: string(s), Short: string(s)}
}
