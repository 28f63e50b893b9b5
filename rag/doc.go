// Package rag provides grounded question answering over the product catalog.
//
// The Answerer type retrieves products relevant to a question using the
// search package and asks an AnswerGenerator to produce an answer grounded
// in the retrieved products. Answers carry their sources so callers can show
// what the answer was built from.
package rag
