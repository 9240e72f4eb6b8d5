package rewards

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Task is a referral-count milestone bonus
type Task struct {
	ID       string          `json:"id"`
	Required int             `json:"required"`
	Reward   decimal.Decimal `json:"reward"`
	Daily    bool            `json:"daily"`
}

// Tasks lists one-time milestones followed by daily ones
var Tasks = []Task{
	{ID: "task_3", Required: 3, Reward: decimal.NewFromInt(200)},
	{ID: "task_70", Required: 70, Reward: decimal.NewFromInt(3000)},
	{ID: "task_200", Required: 200, Reward: decimal.NewFromInt(11000)},
	{ID: "task_500", Required: 500, Reward: decimal.NewFromInt(55000)},
	{ID: "task_1000", Required: 1000, Reward: decimal.NewFromInt(170000)},
	{ID: "daily_1", Required: 1, Reward: decimal.NewFromInt(20), Daily: true},
	{ID: "daily_3", Required: 3, Reward: decimal.NewFromInt(50), Daily: true},
	{ID: "daily_20", Required: 20, Reward: decimal.NewFromInt(500), Daily: true},
}

// FindTask looks a task up by id
func FindTask(id string) (Task, bool) {
	for _, task := range Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return Task{}, false
}

// Unlocked reports whether the active direct referral count meets the task
func (t Task) Unlocked(activeReferrals int) bool {
	return activeReferrals >= t.Required
}

// ClaimKey is unique per account: the task id for one-time tasks and the
// task id plus the business date for daily tasks.
func (t Task) ClaimKey(date string) string {
	if t.Daily {
		return fmt.Sprintf("%s:%s", t.ID, date)
	}
	return t.ID
}
