package db

import "fmt"

const subtaskPathView = "subtask_with_parent_path"

// maxPathDepth caps the recursive walk so a cyclic parent chain terminates.
// It matches hierarchy.DefaultMaxLevels.
const maxPathDepth = 100

var dropSubtaskPathView = "DROP VIEW IF EXISTS " + subtaskPathView

// createSubtaskPathView walks from each subtask up through container parents,
// keeps the deepest chain per subtask and prefixes it with the subtask's
// project: "/<project_id>/<root>>...>subtask.". The SQL is shared by SQLite
// and PostgreSQL.
var createSubtaskPathView = fmt.Sprintf(`CREATE VIEW %[1]s AS
WITH RECURSIVE subtask_path_raw (id, parent_issue_id, level, path) AS (
	SELECT
		st.id,
		parent.parent_issue_id,
		1,
		CAST(parent.id AS TEXT) || '>' || CAST(st.id AS TEXT) || '.'
	FROM issue AS st
	JOIN issue AS parent
		ON parent.id = st.parent_issue_id AND parent.is_subtask = FALSE
	WHERE st.is_subtask = TRUE

	UNION ALL

	SELECT
		raw.id,
		parent.parent_issue_id,
		raw.level + 1,
		CAST(parent.id AS TEXT) || '>' || raw.path
	FROM subtask_path_raw AS raw
	JOIN issue AS parent
		ON parent.id = raw.parent_issue_id AND parent.is_subtask = FALSE
	WHERE raw.level < %[2]d
)
SELECT
	st.id,
	st.name,
	st.project_id,
	st.parent_issue_id,
	st.type,
	st.is_subtask,
	st.status,
	st.limit_date,
	st.description,
	'/' || COALESCE(CAST(st.project_id AS TEXT), '') || '/' || deepest.path AS path,
	st.update_timestamp,
	st.create_timestamp
FROM issue AS st
LEFT JOIN (
	SELECT ranked.id, ranked.path
	FROM (
		SELECT
			raw.id,
			raw.path,
			ROW_NUMBER() OVER (PARTITION BY raw.id ORDER BY raw.level DESC) AS rn
		FROM subtask_path_raw AS raw
	) AS ranked
	WHERE ranked.rn = 1
) AS deepest
	ON deepest.id = st.id
WHERE st.is_subtask = TRUE`, subtaskPathView, maxPathDepth)

// ancestorMatch is a join predicate true when idCol appears as a container
// segment of pathCol. Container ids are always followed by '>' and preceded
// by '/' or '>', which keeps 11 from matching inside 110 and keeps the
// project segment and the trailing subtask id out of the match. It mirrors
// hierarchy.Path.ContainsAncestor.
func ancestorMatch(pathCol, idCol string) string {
	return fmt.Sprintf(
		"((%[1]s LIKE ('%%/' || CAST(%[2]s AS TEXT) || '>%%')) OR (%[1]s LIKE ('%%>' || CAST(%[2]s AS TEXT) || '>%%')))",
		pathCol, idCol)
}
