package types

// Task is a unit of work employees book worktime against.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"task_id"`

	// Description is the optional free-form description of the task.
	Description *string `json:"description" db:"task_description"`
}
