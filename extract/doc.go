// Package extract turns exam documents into raw text.
//
// PDFs are read page by page from their text layer. A page whose text layer
// is blank is rasterized and run through optical character recognition
// instead. DOCX files are read from their body paragraphs.
//
// Before extraction a noise pass removes watermarks: every page annotation is
// dropped from a PDF, and every DOCX header paragraph mentioning "watermark"
// is emptied. The pass is idempotent and never reorders pages or paragraphs.
//
// # External Tools
//
// Optical recognition shells out to pdftoppm (poppler-utils) and tesseract.
// Both are only needed for scanned pages; use CheckAvailable to probe for
// them up front.
package extract
