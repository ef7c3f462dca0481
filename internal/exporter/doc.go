// Package exporter writes normalized tables and aggregates to CSV and XLSX.
//
// Two layouts are supported:
//
//	table      region,year,value  one row per record, in table order
//	aggregate  region,label,value one row per region, as given
//
// Writers accept any io.Writer so the same code serves HTTP downloads and
// files under the exports directory. CSV output can carry a UTF-8 BOM so
// spreadsheet applications detect the encoding.
package exporter
