// Package questions turns raw document text into normalized candidate
// questions and keeps the batch-wide occurrence counts.
package questions
