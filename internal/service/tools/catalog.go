package tools

import (
	"encoding/json"
	"net/http"
)

// Catalog returns every tool the assistant can call. Remote tools map onto
// gateway endpoints, memory_update is handled in-process by the invoker.
func Catalog() []Definition {
	return []Definition{
		// Calendar
		{
			Name:        "get_events",
			Description: "Get calendar events for the next N days.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"days": {"type": "integer", "description": "Number of days to look ahead (1-30). Defaults to 7."}
				}
			}`),
			Method:   http.MethodGet,
			Endpoint: "/calendar/events",
		},
		{
			Name:        "check_availability",
			Description: "Get busy time slots for the primary calendar.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"date": {"type": "string", "description": "Start date in YYYY-MM-DD format. Defaults to today."},
					"days": {"type": "integer", "description": "Number of days to check (1-7). Defaults to 1."}
				}
			}`),
			Method:   http.MethodGet,
			Endpoint: "/calendar/availability",
		},
		{
			Name:        "create_event",
			Description: "Create a new calendar event.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "description": "Event title."},
					"start": {"type": "string", "description": "Start in ISO 8601 format, e.g. '2026-02-20T14:00:00'. Use YYYY-MM-DD for all-day events."},
					"end": {"type": "string", "description": "End in ISO 8601 format."},
					"all_day": {"type": "boolean", "description": "True for all-day events."},
					"location": {"type": "string"},
					"description": {"type": "string"},
					"timezone": {"type": "string", "description": "Timezone string, e.g. 'America/New_York'. Defaults to America/New_York."},
					"recurrence": {"type": "array", "items": {"type": "string"}, "description": "RRULE strings for recurring events, e.g. ['FREQ=WEEKLY;BYDAY=MO'] for every Monday. Omit for one-time events."},
					"reminder_minutes": {"type": "array", "items": {"type": "integer"}, "description": "Popup reminder times in minutes before the event, e.g. [10, 60] for 10 min and 1 hour before."}
				},
				"required": ["title", "start", "end"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/calendar/events",
		},
		{
			Name:        "update_event",
			Description: "Update an existing calendar event. Only provide fields to change.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"event_id": {"type": "string", "description": "The event ID to update."},
					"title": {"type": "string"},
					"start": {"type": "string", "description": "ISO 8601 datetime."},
					"end": {"type": "string", "description": "ISO 8601 datetime."},
					"location": {"type": "string"},
					"description": {"type": "string"},
					"timezone": {"type": "string"},
					"recurrence": {"type": "array", "items": {"type": "string"}, "description": "RRULE strings to set or update recurrence, e.g. ['FREQ=DAILY']. Pass an empty array to remove recurrence."},
					"reminder_minutes": {"type": "array", "items": {"type": "integer"}, "description": "Popup reminder times in minutes before the event. Replaces existing reminders."}
				},
				"required": ["event_id"]
			}`),
			Method:     http.MethodPatch,
			Endpoint:   "/calendar/events/{event_id}",
			PathParams: []string{"event_id"},
		},
		{
			Name:        "delete_event",
			Description: "Delete a calendar event.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"event_id": {"type": "string", "description": "The event ID to delete."}
				},
				"required": ["event_id"]
			}`),
			Method:     http.MethodDelete,
			Endpoint:   "/calendar/events/{event_id}",
			PathParams: []string{"event_id"},
		},
		{
			Name:        "search_events",
			Description: "Search calendar events by keyword across all time. Use when you need to find a specific event without knowing its date.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"q": {"type": "string", "description": "Keyword to search in event titles, descriptions, and locations."},
					"max_results": {"type": "integer", "description": "Max events to return (1-50). Defaults to 10."}
				},
				"required": ["q"]
			}`),
			Method:   http.MethodGet,
			Endpoint: "/calendar/events/search",
		},

		// Tasks
		{
			Name:        "get_task_lists",
			Description: "Get all task lists with their IDs and names.",
			InputSchema: schema(`{"type": "object", "properties": {}}`),
			Method:      http.MethodGet,
			Endpoint:    "/tasks/lists",
		},
		{
			Name:        "get_tasks",
			Description: "Get tasks from a specific task list. Returns all non-completed tasks by default.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"list_id": {"type": "string", "description": "The task list ID. Get available lists with get_task_lists."},
					"include_completed": {"type": "boolean", "description": "Include completed tasks. Defaults to false."}
				},
				"required": ["list_id"]
			}`),
			Method:     http.MethodGet,
			Endpoint:   "/tasks/lists/{list_id}/tasks",
			PathParams: []string{"list_id"},
		},
		{
			Name:        "create_task_list",
			Description: "Create a new Google Tasks task list.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "description": "Task list name."}
				},
				"required": ["title"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/tasks/lists",
		},
		{
			Name:        "rename_task_list",
			Description: "Rename an existing task list.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"list_id": {"type": "string", "description": "The task list ID."},
					"title": {"type": "string", "description": "New task list name."}
				},
				"required": ["list_id", "title"]
			}`),
			Method:     http.MethodPatch,
			Endpoint:   "/tasks/lists/{list_id}",
			PathParams: []string{"list_id"},
		},
		{
			Name:        "create_task",
			Description: "Create a new task in a specific list.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"list_id": {"type": "string", "description": "The task list ID from get_task_lists."},
					"title": {"type": "string", "description": "Task title."},
					"notes": {"type": "string", "description": "Task notes or description."},
					"due": {"type": "string", "description": "Due date in RFC 3339 format, e.g. '2026-02-20T00:00:00.000Z'."}
				},
				"required": ["list_id", "title"]
			}`),
			Method:     http.MethodPost,
			Endpoint:   "/tasks/lists/{list_id}/tasks",
			PathParams: []string{"list_id"},
		},
		{
			Name:        "update_task",
			Description: "Update a task: title, notes, due date, or mark as completed.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"list_id": {"type": "string", "description": "The task list ID."},
					"task_id": {"type": "string", "description": "The task ID."},
					"title": {"type": "string"},
					"notes": {"type": "string"},
					"due": {"type": "string", "description": "RFC 3339 timestamp."},
					"status": {"type": "string", "enum": ["needsAction", "completed"], "description": "Task completion status. Set to 'completed' to mark a task as done, 'needsAction' to reopen it."}
				},
				"required": ["list_id", "task_id"]
			}`),
			Method:     http.MethodPatch,
			Endpoint:   "/tasks/lists/{list_id}/tasks/{task_id}",
			PathParams: []string{"list_id", "task_id"},
		},
		{
			Name:        "delete_task",
			Description: "Delete a task.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"list_id": {"type": "string", "description": "The task list ID."},
					"task_id": {"type": "string", "description": "The task ID."}
				},
				"required": ["list_id", "task_id"]
			}`),
			Method:     http.MethodDelete,
			Endpoint:   "/tasks/lists/{list_id}/tasks/{task_id}",
			PathParams: []string{"list_id", "task_id"},
		},

		// Email
		{
			Name:        "list_emails",
			Description: "List emails from the primary inbox. Filter by unread status and/or recency.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"unread_only": {"type": "boolean", "description": "If true, return only unread emails. Defaults to false."},
					"hours": {"type": "integer", "description": "Limit to emails received within the last N hours (1-168). Omit for no time filter."},
					"max_results": {"type": "integer", "description": "Max emails to return (1-50). Defaults to 20."}
				}
			}`),
			Method:   http.MethodGet,
			Endpoint: "/email",
		},
		{
			Name:        "search_emails",
			Description: "Search emails using Gmail query syntax, e.g. 'from:alice subject:meeting'.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"q": {"type": "string", "description": "Gmail search query."},
					"max_results": {"type": "integer", "description": "Max emails to return (1-50). Defaults to 20."}
				},
				"required": ["q"]
			}`),
			Method:   http.MethodGet,
			Endpoint: "/email/search",
		},
		{
			Name:        "get_email",
			Description: "Get the full content of a specific email by ID.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"message_id": {"type": "string", "description": "The email message ID."}
				},
				"required": ["message_id"]
			}`),
			Method:     http.MethodGet,
			Endpoint:   "/email/messages/{message_id}",
			PathParams: []string{"message_id"},
		},
		{
			Name:        "draft_email",
			Description: "Save an email as a draft in Gmail. Does not send, the user must send it from Gmail.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"to": {"type": "string", "description": "Recipient email address."},
					"subject": {"type": "string", "description": "Email subject."},
					"body": {"type": "string", "description": "Email body text."},
					"cc": {"type": "string", "description": "CC email address."}
				},
				"required": ["to", "subject", "body"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/email/draft",
		},

		// Notifications
		{
			Name:        "send_notification",
			Description: "Send a push notification via Pushover.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "description": "Notification title."},
					"message": {"type": "string", "description": "Notification body."},
					"priority": {"type": "integer", "enum": [-2, -1, 0, 1], "description": "-2=silent, -1=quiet, 0=normal, 1=high. Defaults to 0."},
					"url": {"type": "string", "description": "Optional URL to include."},
					"url_title": {"type": "string", "description": "Display text for the URL."}
				},
				"required": ["title", "message"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/notify",
		},

		// Knowledge base
		{
			Name:        "search_knowledge_base",
			Description: "Search personal knowledge base documents. Use category filters to scope the search to relevant sources.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Search query."},
					"categories": {"type": "array", "items": {"type": "string", "enum": ["general", "projects", "career", "reference"]}, "description": "Limit search to specific KB categories. Omit to search all."},
					"top_k": {"type": "integer", "description": "Number of results to return. Defaults to 10."}
				},
				"required": ["query"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/kb/search",
		},
		{
			Name:        "list_kb_sources",
			Description: "List all documents currently indexed in the knowledge base. Returns each source's file_id, filename, category, chunk count, and sync status. Use file_id with delete_kb_source to remove a specific entry.",
			InputSchema: schema(`{"type": "object", "properties": {}}`),
			Method:      http.MethodGet,
			Endpoint:    "/kb/sources",
		},
		{
			Name:        "delete_kb_source",
			Description: "Remove a document from the knowledge base by its source ID. This deletes the indexed chunks only, the Drive file is not touched. Use list_kb_sources first to find the file_id.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"source_id": {"type": "string", "description": "The file_id from list_kb_sources."}
				},
				"required": ["source_id"]
			}`),
			Method:     http.MethodDelete,
			Endpoint:   "/kb/files/{source_id}",
			PathParams: []string{"source_id"},
		},
		{
			Name:        "sync_kb",
			Description: "Sync the knowledge base with Google Drive. Picks up new and modified files added since the last sync. Call this after using create_file to place a new document in a Drive KB subfolder.",
			InputSchema: schema(`{"type": "object", "properties": {}}`),
			Method:      http.MethodPost,
			Endpoint:    "/kb/sync",
		},

		// Web search
		{
			Name:        "web_search",
			Description: "Search the web for current information. Use when the knowledge base doesn't have the answer or the topic requires up-to-date data.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Search query."},
					"max_results": {"type": "integer", "description": "Number of results to return (1-10). Defaults to 5."},
					"search_depth": {"type": "string", "enum": ["basic", "advanced"], "description": "'basic' is faster, 'advanced' does deeper extraction. Defaults to 'basic'."}
				},
				"required": ["query"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/search/web",
		},
		{
			Name:        "fetch_url",
			Description: "Fetch and extract the readable text content from a specific URL. Use when you have a URL and need its full content.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"url": {"type": "string", "description": "The URL to fetch."}
				},
				"required": ["url"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/search/web/fetch",
		},

		// Storage
		{
			Name:        "list_files",
			Description: "List files in Google Drive. Filter by folder or search query. Use to find a file ID before reading or modifying it.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"folder_id": {"type": "string", "description": "Limit results to a specific Drive folder ID."},
					"query": {"type": "string", "description": "Drive search query, e.g. 'name contains \"resume\"'."},
					"max_results": {"type": "integer", "description": "Max files to return (1-50). Defaults to 20."}
				}
			}`),
			Method:   http.MethodGet,
			Endpoint: "/storage/files",
		},
		{
			Name:        "list_folders",
			Description: "List Drive folders. Use parent_id to browse into a specific folder, or query to search by name. Use this to find a folder ID before creating files or subfolders inside it.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"parent_id": {"type": "string", "description": "Scope results to a specific parent folder ID."},
					"query": {"type": "string", "description": "Drive name filter, e.g. 'name contains \"Projects\"'."},
					"max_results": {"type": "integer", "description": "Max folders to return (1-50). Defaults to 20."}
				}
			}`),
			Method:   http.MethodGet,
			Endpoint: "/storage/folders",
		},
		{
			Name:        "create_folder",
			Description: "Create a new folder in Google Drive, optionally nested inside a parent folder.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "Folder name."},
					"parent_id": {"type": "string", "description": "Parent folder ID. Defaults to Drive root if omitted."}
				},
				"required": ["name"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/storage/folders",
		},
		{
			Name:        "get_file",
			Description: "Fetch the full text content of a Google Drive file by ID. Works with text files, Markdown, CSV, JSON, Google Docs, and PDFs.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"file_id": {"type": "string", "description": "The Drive file ID."}
				},
				"required": ["file_id"]
			}`),
			Method:     http.MethodGet,
			Endpoint:   "/storage/files/{file_id}/content",
			PathParams: []string{"file_id"},
		},
		{
			Name:        "create_file",
			Description: "Create a new file in Google Drive with the given content. Pass mime_type='application/vnd.google-apps.document' to create a native Google Doc.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"name": {"type": "string", "description": "File name including extension, e.g. 'meeting-notes.md'."},
					"content": {"type": "string", "description": "File content as plain text."},
					"folder_id": {"type": "string", "description": "Parent folder ID. Defaults to Drive root if omitted."},
					"mime_type": {"type": "string", "description": "MIME type, e.g. 'text/plain', 'text/markdown', 'text/csv', 'application/vnd.google-apps.document'. Defaults to text/plain."}
				},
				"required": ["name", "content"]
			}`),
			Method:   http.MethodPost,
			Endpoint: "/storage/files",
		},
		{
			Name:        "update_file",
			Description: "Overwrite the content of an existing Google Drive text file. Replaces the entire file content.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"file_id": {"type": "string", "description": "The Drive file ID."},
					"content": {"type": "string", "description": "New file content. Replaces existing content entirely."}
				},
				"required": ["file_id", "content"]
			}`),
			Method:     http.MethodPut,
			Endpoint:   "/storage/files/{file_id}",
			PathParams: []string{"file_id"},
		},
		{
			Name:        "append_to_file",
			Description: "Append text to an existing Google Drive file or Google Doc without overwriting its current content.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"file_id": {"type": "string", "description": "The Drive file ID."},
					"content": {"type": "string", "description": "Text to append."},
					"separator": {"type": "string", "description": "String inserted between existing content and new content. Defaults to two newlines."}
				},
				"required": ["file_id", "content"]
			}`),
			Method:     http.MethodPost,
			Endpoint:   "/storage/files/{file_id}/append",
			PathParams: []string{"file_id"},
		},
		{
			Name:        "delete_file",
			Description: "Move a Google Drive file to trash.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"file_id": {"type": "string", "description": "The Drive file ID."}
				},
				"required": ["file_id"]
			}`),
			Method:     http.MethodDelete,
			Endpoint:   "/storage/files/{file_id}",
			PathParams: []string{"file_id"},
		},

		// Memory (internal, never touches the gateway)
		{
			Name:        "memory_update",
			Description: "Store or update a fact about the user. Call this when the user explicitly tells you something to remember, e.g. 'remember that I prefer dark mode'.",
			InputSchema: schema(`{
				"type": "object",
				"properties": {
					"fact_type": {"type": "string", "enum": ["personal", "preference", "project", "instruction", "relationship"], "description": "Category of the fact."},
					"key": {"type": "string", "description": "Short identifier for the fact, e.g. 'primary_language'."},
					"value": {"type": "string", "description": "The fact value, e.g. 'Python'."}
				},
				"required": ["fact_type", "key", "value"]
			}`),
			Method: MethodInternal,
		},
	}
}

func schema(raw string) json.RawMessage {
	return json.RawMessage(raw)
}
