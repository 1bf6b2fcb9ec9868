// Package qplot draws statistical charts in the style of R's ggplot2
// on top of gonum/plot.
//
//
// Data Representation: Data Frames
//
// Data lives in column oriented data frames. Every column (a Field) stores
// its values as float64; strings are indices into a StringPool shared by
// all frames derived from each other. Data frames are read from CSV files
// with ReadCSVFile or built from a slice of structs:
//      type Measurement struct {
//          Tissue string
//          Value  float64
//      }
//      df, err := qplot.NewDataFrameFrom([]Measurement{...})
//
//
// Filtering and Reshaping
//
// Filter, Exclude and IQRFilter select rows. GroupMean averages a value
// per combination of key fields and Pivot turns a long frame into a
// row × column Grid.
//
//
// Plots
//
// A Plot maps fields to aesthetics (x, y, color, fill, ...). Each Layer
// optionaly transforms its data with a Stat (summary, density, boxplot,
// significance) and draws it with a Geom (point, line, ribbon, bar,
// errorbar, violin, boxplot, tile, bracket). Discrete scales fix the order
// and colors of categories:
//      p := &qplot.Plot{
//          Data:   df,
//          Aes:    qplot.AesMapping{"x": "Tissue", "y": "Value"},
//          Scales: map[string]*qplot.Scale{"x": qplot.DiscreteScale("x", "Liver", "Lung")},
//          Layers: []*qplot.Layer{{Geom: qplot.GeomPoint{Position: qplot.PosSwarm}}},
//      }
//      gp, err := p.Build()
//
// The resulting gonum plot is wrapped in a Figure which writes svg, png,
// pdf, jpeg, tiff or eps files.
package qplot
