package planka

import "net/url"

// AccessTokensPath is the password login endpoint.
const AccessTokensPath = "/api/access-tokens"

// CardPath addresses a card; checklists are embedded in its response.
func CardPath(cardID string) string {
	return "/api/cards/" + url.PathEscape(cardID)
}

// CardTaskListsPath is where checklists are created on a card.
func CardTaskListsPath(cardID string) string {
	return CardPath(cardID) + "/task-lists"
}

// CardCommentsPath lists and creates comments on a card.
func CardCommentsPath(cardID string) string {
	return CardPath(cardID) + "/comments"
}

// TaskListPath addresses one checklist for update and delete.
func TaskListPath(id string) string {
	return "/api/task-lists/" + url.PathEscape(id)
}

// TaskListTasksPath is where checkable items are created.
func TaskListTasksPath(taskListID string) string {
	return TaskListPath(taskListID) + "/tasks"
}

// TaskPath addresses one checkable item.
func TaskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// CommentPath addresses one comment for update and delete.
func CommentPath(id string) string {
	return "/api/comments/" + url.PathEscape(id)
}
