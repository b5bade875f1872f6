// Package internal serves a read-only view of the relay's transient log.
package internal

import (
	"chat-relay/repositories"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

var inspectTemplate = template.Must(template.New("inspect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>relay inspect {{.Prefix}}</title></head>
<body>
<h1>{{.Prefix}} ({{len .Items}})</h1>
<table>
<tr>{{range $k, $v := .Stats}}<th>{{$k}}</th>{{end}}</tr>
<tr>{{range $k, $v := .Stats}}<td>{{$v}}</td>{{end}}</tr>
</table>
<table>
<tr><th>Key</th><th>Seq</th><th>Message</th><th>Detail</th></tr>
{{range .Items}}<tr><td>{{.Key}}</td><td>{{.Seq}}</td><td>{{.MessageID}}</td><td>{{.Detail}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type InspectRow struct {
	Key       string
	Seq       string
	MessageID string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// NewInspectHandler lists every badger key under ?prefix= (the message log by default).
func NewInspectHandler(db *badger.DB, mapper RowMapper, statsProvider StatsProvider) http.Handler {
	if mapper == nil {
		mapper = DefaultMapper
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = repositories.MessagePrefix
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		err := db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				if err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = inspectTemplate.Execute(w, data)
	})
}

// DefaultMapper splits keys shaped like "msg:{seq}:{id}".
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Seq:       "-",
		MessageID: "-",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
	if len(parts) == 3 {
		if seq, err := strconv.ParseUint(parts[1], 10, 64); err == nil {
			row.Seq = strconv.FormatUint(seq, 10)
		}
		row.MessageID = parts[2]
	}
	return row
}
