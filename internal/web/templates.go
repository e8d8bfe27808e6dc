package web

import (
	"html/template"
	"time"

	"todo-go/internal/ui"
)

func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"formatTime": formatTime,
		"isLoading":  func(p ui.Phase) bool { return p == ui.PhaseLoading },
		"isEmpty":    func(p ui.Phase) bool { return p == ui.PhaseEmpty },
	}
	return template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04")
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  {{if .Pending}}<meta http-equiv="refresh" content="1">{{end}}
  <title>Todo List</title>
  <style>
    :root {
      color-scheme: light;
    }
    body {
      margin: 0;
      font-family: "Charter", "Georgia", serif;
      color: #2b2520;
      background: radial-gradient(circle at top left, #f4efe3 0%, #fcfaf6 55%, #f6f2e8 100%);
    }
    header {
      display: flex;
      justify-content: space-between;
      align-items: center;
      padding: 16px 24px;
      border-bottom: 1px solid #d7cdbd;
      background: rgba(255, 255, 255, 0.72);
    }
    header h1 {
      margin: 0;
      font-size: 20px;
      letter-spacing: 0.02em;
    }
    main {
      padding: 18px 24px 28px;
      max-width: 720px;
    }
    .item-list {
      list-style: none;
      padding: 0;
      margin: 0;
      display: flex;
      flex-direction: column;
      gap: 8px;
    }
    .list-item {
      display: flex;
      justify-content: space-between;
      gap: 12px;
      padding: 10px 12px;
      border-radius: 10px;
      border: 1px solid #d7cdbd;
      background: #ffffff;
    }
    .item-title {
      font-weight: 600;
    }
    .item-meta {
      color: #7a6e62;
      font-size: 13px;
    }
    .item-actions {
      display: flex;
      gap: 6px;
      align-items: center;
    }
    .placeholder {
      color: #7a6e62;
      font-style: italic;
    }
    button {
      padding: 6px 12px;
      border-radius: 8px;
      border: 1px solid #cbbfae;
      background: #f7f2e8;
      color: #2b2520;
      font-size: 14px;
      cursor: pointer;
    }
    button.danger {
      border-color: #d9a9a0;
      background: #fbeeea;
    }
    .modal-backdrop {
      position: fixed;
      inset: 0;
      background: rgba(43, 37, 32, 0.35);
      display: flex;
      align-items: center;
      justify-content: center;
    }
    .modal {
      background: #ffffff;
      border: 1px solid #d7cdbd;
      border-radius: 14px;
      padding: 18px 22px;
      min-width: 320px;
      box-shadow: 0 8px 24px rgba(60, 45, 30, 0.18);
    }
    .modal label {
      display: block;
      margin: 10px 0 4px;
      font-size: 14px;
    }
    .modal input, .modal textarea {
      width: 100%;
      box-sizing: border-box;
      padding: 6px 8px;
      font: inherit;
    }
    .modal-actions {
      display: flex;
      justify-content: flex-end;
      gap: 8px;
      margin-top: 14px;
    }
  </style>
</head>
<body>
  <header>
    <h1>TODO LIST</h1>
    <form method="post" action="/todos/new">
      <button type="submit">Create</button>
    </form>
  </header>
  <main>
    {{if isLoading .List.Phase}}
      <p class="placeholder">Loading...</p>
    {{else if isEmpty .List.Phase}}
      <p class="placeholder">No Todos</p>
    {{else}}
      <ul class="item-list">
        {{range .List.Rows}}
          <li class="list-item" data-key="{{.Key.ID}}|{{.Key.Description}}">
            <div>
              <div class="item-title">{{.Todo.Title}}</div>
              <div>{{.Todo.Description}}</div>
              <div class="item-meta">{{formatTime .Todo.Created}}</div>
            </div>
            <div class="item-actions">
              <form method="post" action="/todos/edit?id={{.Todo.ID}}">
                <button type="submit">Edit</button>
              </form>
              <form method="post" action="/todos/delete?id={{.Todo.ID}}">
                <button class="danger" type="submit">Delete</button>
              </form>
            </div>
          </li>
        {{end}}
      </ul>
    {{end}}
  </main>
  {{if .Modal.Visible}}
    <div class="modal-backdrop">
      <div class="modal">
        <h2>{{if .Modal.Editing}}Edit Todo{{else}}New Todo{{end}}</h2>
        <form method="post" action="/todos/submit">
          <label for="title">Title</label>
          <input id="title" name="title" value="{{.Modal.Title}}" autofocus>
          <label for="description">Description</label>
          <textarea id="description" name="description" rows="4">{{.Modal.Description}}</textarea>
          <div class="modal-actions">
            <button type="submit" formaction="/todos/cancel">Cancel</button>
            <button type="submit">Submit</button>
          </div>
        </form>
      </div>
    </div>
  {{end}}
</body>
</html>
`
