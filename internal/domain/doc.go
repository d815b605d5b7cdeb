// Package domain defines the core business entities of the application:
// decks, cards, reviews, grades, and the derived due status. These types
// carry no storage or transport concerns; persistence lives behind the
// store.Repository contract and scheduling math lives in the srs subpackage.
package domain
