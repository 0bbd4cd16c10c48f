// Package extract turns the raw request input (an uploaded PDF and/or pasted
// text) into clean plain text for the generation stages.
//
// PDFs are parsed in-process. A page-by-page pass runs first and is kept only
// when it produces a reasonable amount of text; otherwise a second pass
// rebuilds lines from positioned glyphs. When the PDF yields nothing the
// pasted text is used instead.
package extract
