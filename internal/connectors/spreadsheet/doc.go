// Package spreadsheet implements a source adapter over workbook rows.
//
// Each visible row in each visible sheet becomes one work item: the
// row's primary hyperlink is the content reference and the
// header-labelled cells travel as metadata. Rows without a hyperlink
// carry nothing resolvable and are skipped.
//
// The adapter is storage-agnostic: local XLSX workbooks are read
// through the xlsx subpackage (excelize) and Google Sheets through the
// gsheets subpackage (Sheets API v4). The reader is picked from the
// source's path setting.
//
// Source settings:
//
//   - path: workbook file path, or a docs.google.com spreadsheet URL.
//     Required.
//   - key_column: header label whose cell value becomes the item's
//     source key. Default: "<sheet>!<row number>".
//   - credentials: service account JSON file (Google Sheets).
//   - api_key: API key, an alternative to credentials for sheets
//     shared by link (Google Sheets).
package spreadsheet
